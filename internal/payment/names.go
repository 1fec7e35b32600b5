package payment

import "math/rand"

// productNames is the pool of generic labels shown to payment
// providers instead of the real content title, so a buyer's statement
// or checkout page never reveals what was bought.
var productNames = []string{
	"Personal Development Ebook",
	"Financial Freedom Ebook",
	"Digital Marketing Guide",
	"Health & Wellness Ebook",
	"Productivity Masterclass",
	"Mindfulness & Meditation Guide",
	"Entrepreneurship Blueprint",
	"Wellness Program",
	"Success Coaching",
	"Executive Mentoring",
	"Learning Resources",
	"Online Course Access",
	"Premium Content Subscription",
	"Digital Asset Package",
}

// RandomProductName picks a generic display name, independently per
// transaction.
func RandomProductName() string {
	return productNames[rand.Intn(len(productNames))]
}

// IsGenericName reports whether the name belongs to the pool.
func IsGenericName(name string) bool {
	for _, n := range productNames {
		if n == name {
			return true
		}
	}
	return false
}
