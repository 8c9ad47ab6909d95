package command

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stolasapp/mercato/internal/fixture"
)

func fixtureCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fixture",
		Short: "Inspect and change marketplace state out of band",
	}
	cmd.AddCommand(
		fixturePingCommand(),
		fixtureOptionCommand(),
		fixtureModuleCommand(),
		fixtureMetaCommand(),
		fixturePrivacyCommand(),
	)
	return cmd
}

func fixturePrivacyCommand() *cobra.Command {
	var contentType string
	cmd := &cobra.Command{
		Use:   "privacy FILE",
		Short: "Import an HTML or plain text document as the privacy policy",
		Long: "Import an HTML or plain text document as the privacy policy.\n" +
			"The content type is taken from the file extension unless given. " +
			"Without a declared charset the encoding is detected.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			if contentType == "" {
				contentType = documentType(args[0])
			}
			api, err := newAPIClient(cfg, logger)
			if err != nil {
				return err
			}
			markdown, err := api.ImportPrivacyPolicy(cmd.Context(), contentType, data)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), markdown)
			return err
		},
	}
	cmd.Flags().StringVar(&contentType, "content-type", "", "content type of FILE, including any charset")
	return cmd
}

// documentType guesses a content type without a charset so the site detects
// the encoding.
func documentType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return "text/html"
	case ".md", ".markdown":
		return "text/markdown"
	default:
		return "text/plain"
	}
}

func fixturePingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check the REST credentials and print the site tier",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			api, err := newAPIClient(cfg, logger)
			if err != nil {
				return err
			}
			info, err := api.Ping(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", info.Name, info.Tier)
			return err
		},
	}
}

func fixtureOptionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "option",
		Short: "Option commands",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "get NAME",
			Short: "Print an option as JSON",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, logger, err := loadConfig(cmd.Context())
				if err != nil {
					return err
				}
				api, err := newAPIClient(cfg, logger)
				if err != nil {
					return err
				}
				value, err := api.GetOption(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(value))
				return err
			},
		},
		&cobra.Command{
			Use:   "merge NAME JSON",
			Short: "Deep merge a JSON object into an option",
			Args:  cobra.ExactArgs(2), //nolint:mnd // name and patch
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, logger, err := loadConfig(cmd.Context())
				if err != nil {
					return err
				}
				patch, err := decodeObject(args[1])
				if err != nil {
					return err
				}
				api, err := newAPIClient(cfg, logger)
				if err != nil {
					return err
				}
				return api.PatchOption(cmd.Context(), args[0], patch)
			},
		},
		&cobra.Command{
			Use:   "delete NAME",
			Short: "Remove an option",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, logger, err := loadConfig(cmd.Context())
				if err != nil {
					return err
				}
				api, err := newAPIClient(cfg, logger)
				if err != nil {
					return err
				}
				return api.DeleteOption(cmd.Context(), args[0])
			},
		},
	)
	return cmd
}

func fixtureModuleCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "module",
		Short: "Module commands",
	}
	toggle := func(use, short string, active bool) *cobra.Command {
		return &cobra.Command{
			Use:   use + " ID...",
			Short: short,
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, logger, err := loadConfig(cmd.Context())
				if err != nil {
					return err
				}
				api, err := newAPIClient(cfg, logger)
				if err != nil {
					return err
				}
				if active {
					return api.ActivateModules(cmd.Context(), args...)
				}
				return api.DeactivateModules(cmd.Context(), args...)
			},
		}
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List modules and whether they are active",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, logger, err := loadConfig(cmd.Context())
				if err != nil {
					return err
				}
				api, err := newAPIClient(cfg, logger)
				if err != nil {
					return err
				}
				modules, err := api.ListModules(cmd.Context())
				if err != nil {
					return err
				}
				for _, m := range modules {
					if _, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%t\n", m.ID, m.Active); err != nil {
						return err
					}
				}
				return nil
			},
		},
		toggle("activate", "Activate modules", true),
		toggle("deactivate", "Deactivate modules", false),
	)
	return cmd
}

func fixtureMetaCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "meta",
		Short: "User meta commands, applied directly to the store",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "get USER KEY",
			Short: "Print a user meta value",
			Args:  cobra.ExactArgs(2), //nolint:mnd // user and key
			RunE: func(cmd *cobra.Command, args []string) (runErr error) {
				dbc, userID, err := openMeta(cmd, args[0])
				if err != nil {
					return err
				}
				defer func() { runErr = errors.Join(runErr, dbc.Close()) }()
				value, err := dbc.GetUserMeta(cmd.Context(), userID, args[1])
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), value)
				return err
			},
		},
		&cobra.Command{
			Use:   "merge USER KEY JSON",
			Short: "Deep merge a JSON object into a user meta value",
			Args:  cobra.ExactArgs(3), //nolint:mnd // user, key and patch
			RunE: func(cmd *cobra.Command, args []string) (runErr error) {
				patch, err := decodeObject(args[2])
				if err != nil {
					return err
				}
				dbc, userID, err := openMeta(cmd, args[0])
				if err != nil {
					return err
				}
				defer func() { runErr = errors.Join(runErr, dbc.Close()) }()
				return dbc.UpdateUserMeta(cmd.Context(), userID, args[1], patch)
			},
		},
	)
	return cmd
}

// openMeta opens the store and resolves user, which is an ID or a username.
func openMeta(cmd *cobra.Command, user string) (*fixture.DBClient, uint64, error) {
	cfg, logger, err := loadConfig(cmd.Context())
	if err != nil {
		return nil, 0, err
	}
	dbc, err := fixture.OpenDB(cmd.Context(), cfg.DSN, logger)
	if err != nil {
		return nil, 0, err
	}
	if id, err := strconv.ParseUint(user, 10, 64); err == nil {
		return dbc, id, nil
	}
	id, err := dbc.UserID(cmd.Context(), user)
	if err != nil {
		return nil, 0, errors.Join(err, dbc.Close())
	}
	return dbc, id, nil
}

func decodeObject(raw string) (map[string]any, error) {
	var out map[string]any
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("patch must be a JSON object: %w", err)
	}
	return out, nil
}
