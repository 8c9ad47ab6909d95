package testdata

import (
	"strings"
	"sync"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
)

// Generator produces per-run unique fixture values. A fixed seed makes runs
// reproducible; unique suffixes still come from random UUIDs so that
// concurrent runs against one site never collide.
type Generator struct {
	mu    sync.Mutex
	faker *gofakeit.Faker
}

// NewGenerator returns a Generator seeded with seed. Zero picks a random
// seed.
func NewGenerator(seed uint64) *Generator {
	return &Generator{faker: gofakeit.New(seed)}
}

// Suffix returns a short unique token.
func (g *Generator) Suffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// PaypalAccount returns a vendor PayPal payout method with a unique email.
func (g *Generator) PaypalAccount() VendorPaymentMethod {
	g.mu.Lock()
	defer g.mu.Unlock()
	return VendorPaymentMethod{
		Method:             "paypal",
		Email:              g.email(),
		SaveSuccessMessage: VendorPaymentSaved,
	}
}

// SkrillAccount returns a vendor Skrill payout method with a unique email.
func (g *Generator) SkrillAccount() VendorPaymentMethod {
	g.mu.Lock()
	defer g.mu.Unlock()
	return VendorPaymentMethod{
		Method:             "skrill",
		Email:              g.email(),
		SaveSuccessMessage: VendorPaymentSaved,
	}
}

// CustomAccount returns a vendor payout method for the admin-defined custom
// withdraw method.
func (g *Generator) CustomAccount() VendorPaymentMethod {
	g.mu.Lock()
	defer g.mu.Unlock()
	return VendorPaymentMethod{
		Method:             "dokan_custom",
		CustomValue:        g.faker.Phone(),
		SaveSuccessMessage: VendorPaymentSaved,
	}
}

// BankAccount returns a vendor bank transfer payout method.
func (g *Generator) BankAccount() VendorPaymentMethod {
	g.mu.Lock()
	defer g.mu.Unlock()
	return VendorPaymentMethod{
		Method: "bank",
		Bank: BankAccount{
			AccountName:   g.faker.Name(),
			AccountType:   g.faker.RandomString([]string{"personal", "business"}),
			AccountNumber: g.faker.AchAccount(),
			RoutingNumber: g.faker.AchRouting(),
			BankName:      g.faker.Company() + " Bank",
			BankAddress:   g.faker.Street() + ", " + g.faker.City(),
			IBAN:          "GB" + g.faker.Numerify("##") + "NWBK" + g.faker.Numerify("##############"),
			Swift:         strings.ToUpper(g.faker.LetterN(4)) + "GB2L",
		},
		SaveSuccessMessage: VendorPaymentSaved,
	}
}

// Gateway returns settings for the gateway a payment module adds.
func (g *Generator) Gateway(module string) GatewaySettings {
	g.mu.Lock()
	defer g.mu.Unlock()
	return GatewaySettings{
		Module:             module,
		Title:              g.faker.ProductName(),
		Description:        g.faker.Sentence(8),
		TestMode:           true,
		PublishableKey:     "pk_test_" + g.Suffix() + g.Suffix(),
		SecretKey:          "sk_test_" + g.Suffix() + g.Suffix(),
		SaveSuccessMessage: WooCommerceSaved,
	}
}

// CouponCode returns a unique coupon code.
func (g *Generator) CouponCode() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return strings.ToLower(g.faker.Word()) + "_" + g.Suffix()
}

// Username returns a unique valid account name.
func (g *Generator) Username() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	name := strings.ToLower(g.faker.FirstName())
	name = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, name)
	return name + "_" + g.Suffix()
}

// Sentence returns filler prose.
func (g *Generator) Sentence(words int) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.faker.Sentence(words)
}

func (g *Generator) email() string {
	return strings.ToLower(g.faker.FirstName()) + "." + g.Suffix() + "@example.com"
}

// Email returns a unique address on a reserved domain.
func (g *Generator) Email() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.email()
}
