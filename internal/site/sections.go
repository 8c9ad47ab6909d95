package site

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"strconv"
	"strings"

	"github.com/stolasapp/mercato/internal/testdata"
)

// FieldKind is the widget a settings field renders as.
type FieldKind string

const (
	KindText     FieldKind = "text"
	KindTextarea FieldKind = "textarea"
	KindSelect   FieldKind = "select"
	KindSwitch   FieldKind = "switch"
	KindRadio    FieldKind = "radio"
)

// Choice is one option of a select or radio field.
type Choice struct {
	Value string
	Label string
}

// Field describes one input of a settings section.
type Field struct {
	Key     string
	Label   string
	Kind    FieldKind
	Choices []Choice
	Default string
	Numeric bool
	Pro     bool
	// Pages fills Choices from the site's page list.
	Pages bool
}

// Section is one admin settings screen, persisted as a single option holding
// a flat JSON object of field values.
type Section struct {
	ID     string
	Option string
	Title  string
	// Module gates the whole section on an active module; the pro tier is
	// implied.
	Module string
	Fields []Field
}

// Page is a site page selectable in settings.
type Page struct {
	ID    string
	Title string
}

// Pages are the static site pages.
var Pages = []Page{
	{ID: "2", Title: "Dashboard"},
	{ID: "3", Title: "My Orders"},
	{ID: "4", Title: "Store List"},
	{ID: "5", Title: "Terms and Conditions"},
	{ID: "6", Title: "Privacy Policy"},
	{ID: "7", Title: "Shop"},
}

const (
	on  = "on"
	off = "off"
)

var (
	recipients = []Choice{{"seller", "Vendor"}, {"admin", "Admin"}}
	weekdays   = []Choice{
		{"monday", "Monday"}, {"tuesday", "Tuesday"}, {"wednesday", "Wednesday"},
		{"thursday", "Thursday"}, {"friday", "Friday"}, {"saturday", "Saturday"},
		{"sunday", "Sunday"},
	}
	monthWeeks = []Choice{{"1", "First"}, {"2", "Second"}, {"3", "Third"}, {"L", "Last"}}
)

// Sections are the admin settings screens in menu order.
var Sections = []Section{
	{
		ID: "general", Option: testdata.OptionGeneral, Title: "General",
		Fields: []Field{
			{Key: "admin_access", Label: "Admin Area Access", Kind: KindSwitch, Default: on},
			{Key: "custom_store_url", Label: "Vendor Store URL", Kind: KindText, Default: "store"},
			{Key: "setup_wizard_message", Label: "Vendor Setup Wizard Message", Kind: KindTextarea},
			{Key: "selling_product_types", Label: "Selling Product Types", Kind: KindRadio, Pro: true, Default: "sell_both", Choices: []Choice{
				{"sell_both", "Sell both Physical and Digital Products"},
				{"sell_physical", "Sell only Physical Products"},
				{"sell_digital", "Sell only Digital Products"},
			}},
			{Key: "seller_enable_terms_and_conditions", Label: "Store Terms and Conditions", Kind: KindSwitch, Default: off},
			{Key: "store_products_per_page", Label: "Store Products Per Page", Kind: KindText, Default: "12", Numeric: true},
			{Key: "enable_tc_on_reg", Label: "Enable Terms and Conditions for Vendor Registration", Kind: KindSwitch, Pro: true, Default: off},
			{Key: "store_category_type", Label: "Store Category", Kind: KindRadio, Pro: true, Default: "none", Choices: []Choice{
				{"none", "None"}, {"single", "Single"}, {"multiple", "Multiple"},
			}},
			{Key: "show_vendor_info", Label: "Show Vendor Info", Kind: KindSwitch, Default: off},
			{Key: "enabled_more_products_tab", Label: "Enable More Products Tab", Kind: KindSwitch, Default: on},
		},
	},
	{
		ID: "selling", Option: testdata.OptionSelling, Title: "Selling Options",
		Fields: []Field{
			{Key: "commission_type", Label: "Commission Type", Kind: KindSelect, Default: "percentage", Choices: []Choice{
				{"percentage", "Percentage"}, {"fixed", "Fixed"}, {"combine", "Combine"},
			}},
			{Key: "admin_percentage", Label: "Admin Commission", Kind: KindText, Default: "10", Numeric: true},
			{Key: "additional_fee", Label: "Additional Fee", Kind: KindText, Default: "0", Numeric: true},
			{Key: "shipping_fee_recipient", Label: "Shipping Fee", Kind: KindRadio, Default: "seller", Choices: recipients},
			{Key: "tax_fee_recipient", Label: "Product Tax Fee", Kind: KindRadio, Default: "seller", Choices: recipients},
			{Key: "shipping_tax_fee_recipient", Label: "Shipping Tax Fee", Kind: KindRadio, Default: "seller", Choices: recipients},
			{Key: "new_seller_enable_selling", Label: "Enable Selling", Kind: KindSwitch, Default: on},
			{Key: "one_step_product", Label: "One Page Product Creation", Kind: KindSwitch, Default: off},
			{Key: "order_status_change", Label: "Order Status Change", Kind: KindSwitch, Default: on},
			{Key: "dokan_any_category_selection", Label: "Select Any Category", Kind: KindSwitch, Default: off},
			{Key: "product_status", Label: "New Product Status", Kind: KindRadio, Pro: true, Default: "pending", Choices: []Choice{
				{"publish", "Published"}, {"pending", "Pending Review"},
			}},
			{Key: "catalog_mode_hide_add_to_cart_button", Label: "Remove Add to Cart Button", Kind: KindSwitch, Default: off},
			{Key: "catalog_mode_hide_product_price", Label: "Hide Product Price", Kind: KindSwitch, Default: off},
		},
	},
	{
		ID: "withdraw", Option: testdata.OptionWithdraw, Title: "Withdraw Options",
		Fields: []Field{
			{Key: "withdraw_methods.paypal", Label: "PayPal", Kind: KindSwitch, Default: on},
			{Key: "withdraw_methods.bank", Label: "Bank Transfer", Kind: KindSwitch, Default: on},
			{Key: "withdraw_methods.skrill", Label: "Skrill", Kind: KindSwitch, Pro: true, Default: off},
			{Key: "withdraw_methods.dokan_custom", Label: "Custom", Kind: KindSwitch, Pro: true, Default: off},
			{Key: "withdraw_method_name", Label: "Custom Method Name", Kind: KindText, Pro: true},
			{Key: "withdraw_method_type", Label: "Custom Method Type", Kind: KindText, Pro: true},
			{Key: "withdraw_charges.paypal", Label: "PayPal Charge (%)", Kind: KindText, Default: "0", Numeric: true},
			{Key: "withdraw_charges.bank", Label: "Bank Transfer Charge", Kind: KindText, Default: "0", Numeric: true},
			{Key: "withdraw_charges.skrill", Label: "Skrill Charge (%)", Kind: KindText, Pro: true, Default: "0", Numeric: true},
			{Key: "withdraw_charges.dokan_custom", Label: "Custom Charge (%)", Kind: KindText, Pro: true, Default: "0", Numeric: true},
			{Key: "withdraw_limit", Label: "Minimum Withdraw Amount", Kind: KindText, Default: "50", Numeric: true},
			{Key: "withdraw_order_status.wc-completed", Label: "Completed Orders", Kind: KindSwitch, Default: on},
			{Key: "withdraw_order_status.wc-processing", Label: "Processing Orders", Kind: KindSwitch, Default: off},
			{Key: "withdraw_threshold", Label: "Withdraw Threshold", Kind: KindText, Pro: true, Default: "0", Numeric: true},
			{Key: "disbursement.manual", Label: "Manual Withdraw", Kind: KindSwitch, Pro: true, Default: on},
			{Key: "disbursement.schedule", Label: "Schedule Disbursement", Kind: KindSwitch, Pro: true, Default: off},
			{Key: "disbursement_schedule.quarterly", Label: "Quarterly Schedule", Kind: KindSwitch, Pro: true, Default: off},
			{Key: "disbursement_schedule.monthly", Label: "Monthly Schedule", Kind: KindSwitch, Pro: true, Default: off},
			{Key: "disbursement_schedule.biweekly", Label: "Biweekly Schedule", Kind: KindSwitch, Pro: true, Default: off},
			{Key: "disbursement_schedule.weekly", Label: "Weekly Schedule", Kind: KindSwitch, Pro: true, Default: off},
			{Key: "quarterly_schedule.month", Label: "Quarterly Month", Kind: KindSelect, Pro: true, Default: "march", Choices: []Choice{
				{"january", "January"}, {"february", "February"}, {"march", "March"},
			}},
			{Key: "quarterly_schedule.week", Label: "Quarterly Week", Kind: KindSelect, Pro: true, Default: "1", Choices: monthWeeks},
			{Key: "quarterly_schedule.day", Label: "Quarterly Day", Kind: KindSelect, Pro: true, Default: "monday", Choices: weekdays},
			{Key: "monthly_schedule.week", Label: "Monthly Week", Kind: KindSelect, Pro: true, Default: "1", Choices: monthWeeks},
			{Key: "monthly_schedule.day", Label: "Monthly Day", Kind: KindSelect, Pro: true, Default: "monday", Choices: weekdays},
			{Key: "biweekly_schedule.week", Label: "Biweekly Week", Kind: KindSelect, Pro: true, Default: "1", Choices: []Choice{
				{"1", "Week 1"}, {"2", "Week 2"},
			}},
			{Key: "biweekly_schedule.day", Label: "Biweekly Day", Kind: KindSelect, Pro: true, Default: "monday", Choices: weekdays},
			{Key: "weekly_schedule", Label: "Weekly Day", Kind: KindSelect, Pro: true, Default: "monday", Choices: weekdays},
		},
	},
	{
		ID: "reverse_withdrawal", Option: testdata.OptionReverseWithdraw, Title: "Reverse Withdrawal",
		Fields: []Field{
			{Key: "enabled", Label: "Enable Reverse Withdrawal", Kind: KindSwitch, Default: off},
			{Key: "payment_gateways.cod", Label: "Cash on Delivery", Kind: KindSwitch, Default: on},
			{Key: "billing_type", Label: "Billing Type", Kind: KindSelect, Default: "by_amount", Choices: []Choice{
				{"by_amount", "By Balance Limit"}, {"monthly", "Monthly"},
			}},
			{Key: "reverse_balance_threshold", Label: "Reverse Balance Limit", Kind: KindText, Default: "150", Numeric: true},
			{Key: "due_period", Label: "Grace Period", Kind: KindText, Default: "7", Numeric: true},
			{Key: "failed_actions.enable_catalog_mode", Label: "Disable Add to Cart Button", Kind: KindSwitch, Default: on},
			{Key: "failed_actions.hide_withdraw_menu", Label: "Hide Withdraw Menu", Kind: KindSwitch, Default: on},
			{Key: "failed_actions.status_inactive", Label: "Make Vendor Status Inactive", Kind: KindSwitch, Default: off},
			{Key: "display_notice", Label: "Display Notice", Kind: KindSwitch, Default: on},
			{Key: "send_announcement", Label: "Send Announcement", Kind: KindSwitch, Pro: true, Default: off},
		},
	},
	{
		ID: "page", Option: testdata.OptionPages, Title: "Page Settings",
		Fields: []Field{
			{Key: "dashboard", Label: "Dashboard", Kind: KindSelect, Pages: true, Default: "2"},
			{Key: "my_orders", Label: "My Orders", Kind: KindSelect, Pages: true, Default: "3"},
			{Key: "store_listing", Label: "Store Listing", Kind: KindSelect, Pages: true, Default: "4"},
			{Key: "reg_tc_page", Label: "Terms and Conditions Page", Kind: KindSelect, Pages: true, Default: "5"},
		},
	},
	{
		ID: "appearance", Option: testdata.OptionAppearance, Title: "Appearance",
		Fields: []Field{
			{Key: "store_map", Label: "Show Map on Store Page", Kind: KindSwitch, Default: on},
			{Key: "map_api_source", Label: "Map API Source", Kind: KindRadio, Default: "google_maps", Choices: []Choice{
				{"google_maps", "Google Maps"}, {"mapbox", "Mapbox"},
			}},
			{Key: "gmap_api_key", Label: "Google Map API Key", Kind: KindText},
			{Key: "contact_seller", Label: "Show Contact Form on Store Page", Kind: KindSwitch, Default: on},
			{Key: "store_header_template", Label: "Store Header Template", Kind: KindRadio, Default: "default", Choices: []Choice{
				{"default", "Default"}, {"layout1", "Layout 1"}, {"layout2", "Layout 2"}, {"layout3", "Layout 3"},
			}},
			{Key: "store_banner_width", Label: "Store Banner Width", Kind: KindText, Pro: true, Default: "625", Numeric: true},
			{Key: "store_banner_height", Label: "Store Banner Height", Kind: KindText, Pro: true, Default: "300", Numeric: true},
			{Key: "store_open_close", Label: "Store Opening Closing Time Widget", Kind: KindSwitch, Pro: true, Default: on},
		},
	},
	{
		ID: "privacy_policy", Option: testdata.OptionPrivacy, Title: "Privacy Policy",
		Fields: []Field{
			{Key: "enable_privacy", Label: "Enable Privacy Policy", Kind: KindSwitch, Default: off},
			{Key: "privacy_page", Label: "Privacy Page", Kind: KindSelect, Pages: true, Default: "6"},
			{Key: "privacy_policy", Label: "Privacy Policy", Kind: KindTextarea},
		},
	},
	{
		ID: "store_support", Option: testdata.OptionStoreSupport, Title: "Store Support", Module: testdata.ModuleStoreSupport,
		Fields: []Field{
			{Key: "enabled_for_customer_order", Label: "Display on Order Details", Kind: KindSwitch, Default: off},
			{Key: "store_support_product_page", Label: "Display on Single Product Page", Kind: KindSelect, Default: "above_tab", Choices: []Choice{
				{"above_tab", "Above Product Tab"}, {"inside_tab", "Inside Product Tab"}, {"dont_show", "Don't Show"},
			}},
			{Key: "support_button_label", Label: "Support Button Label", Kind: KindText, Default: "Get Support"},
		},
	},
}

// SectionByID returns the section with the given URL identifier.
func SectionByID(id string) (Section, bool) {
	for _, section := range Sections {
		if section.ID == id {
			return section, true
		}
	}
	return Section{}, false
}

// Available reports whether the section is shown for the tier and active
// modules.
func (s Section) Available(pro bool, active map[string]bool) bool {
	return s.Module == "" || (pro && active[s.Module])
}

// VisibleFields returns the fields rendered for the tier.
func (s Section) VisibleFields(pro bool) []Field {
	fields := make([]Field, 0, len(s.Fields))
	for _, field := range s.Fields {
		if field.Pro && !pro {
			continue
		}
		fields = append(fields, field)
	}
	return fields
}

// Defaults returns the value of every field before any save.
func (s Section) Defaults() map[string]string {
	values := make(map[string]string, len(s.Fields))
	for _, field := range s.Fields {
		values[field.Key] = field.Default
	}
	return values
}

// choices returns the allowed values of a select or radio field.
func (f Field) choices() []Choice {
	if !f.Pages {
		return f.Choices
	}
	out := make([]Choice, len(Pages))
	for i, page := range Pages {
		out[i] = Choice{Value: page.ID, Label: page.Title}
	}
	return out
}

// ValidationError reports a rejected settings value.
type ValidationError struct {
	Label  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Label + " " + e.Reason
}

// Merge validates submitted values for the fields visible on the tier and
// merges them over stored. Unknown keys and hidden fields are ignored.
func (s Section) Merge(stored, submitted map[string]string, pro bool) (map[string]string, error) {
	merged := s.Defaults()
	maps.Copy(merged, stored)
	for _, field := range s.VisibleFields(pro) {
		value, ok := submitted[field.Key]
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		if err := field.validate(value); err != nil {
			return nil, err
		}
		merged[field.Key] = value
	}
	return merged, nil
}

func (f Field) validate(value string) error {
	switch {
	case f.Kind == KindSwitch:
		if value != on && value != off {
			return &ValidationError{Label: f.Label, Reason: "must be on or off"}
		}
	case f.Kind == KindSelect || f.Kind == KindRadio:
		for _, choice := range f.choices() {
			if choice.Value == value {
				return nil
			}
		}
		return &ValidationError{Label: f.Label, Reason: fmt.Sprintf("does not accept %q", value)}
	case f.Numeric:
		if value == "" {
			return nil
		}
		if n, err := strconv.ParseFloat(value, 64); err != nil || n < 0 {
			return &ValidationError{Label: f.Label, Reason: "must be a non-negative number"}
		}
	}
	return nil
}

// decodeValues parses a stored option into its flat field map. Missing or
// empty options decode to an empty map.
func decodeValues(raw string) (map[string]string, error) {
	values := map[string]string{}
	if raw == "" {
		return values, nil
	}
	var generic map[string]any
	if err := json.Unmarshal([]byte(raw), &generic); err != nil {
		return nil, fmt.Errorf("failed to decode option: %w", err)
	}
	flatten("", generic, values)
	return values, nil
}

// flatten folds nested objects into dotted keys so options written through
// the REST API in nested form render like those saved from the screen.
func flatten(prefix string, in map[string]any, out map[string]string) {
	for key, value := range in {
		if prefix != "" {
			key = prefix + "." + key
		}
		switch typed := value.(type) {
		case map[string]any:
			flatten(key, typed, out)
		case string:
			out[key] = typed
		case bool:
			out[key] = off
			if typed {
				out[key] = on
			}
		case nil:
			out[key] = ""
		default:
			out[key] = fmt.Sprint(typed)
		}
	}
}

func encodeValues(values map[string]string) (string, error) {
	raw, err := json.Marshal(values)
	if err != nil {
		return "", errors.Join(errors.New("failed to encode option"), err)
	}
	return string(raw), nil
}
