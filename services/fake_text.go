package services

import (
	"github.com/brianvoe/gofakeit/v7"
)

// FakeTextProvider is the gofakeit-backed TextProvider
type FakeTextProvider struct {
	faker *gofakeit.Faker
}

// NewFakeTextProvider creates a provider. A zero seed is random.
func NewFakeTextProvider(seed uint64) *FakeTextProvider {
	return &FakeTextProvider{faker: gofakeit.New(seed)}
}

func (p *FakeTextProvider) Company() string {
	return p.faker.Company()
}

func (p *FakeTextProvider) Phone() string {
	return p.faker.PhoneFormatted()
}

func (p *FakeTextProvider) Contact() string {
	return p.faker.Name()
}
