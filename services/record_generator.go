package services

import (
	"math/rand/v2"

	"eu_records/models"

	"github.com/google/uuid"
)

// TextProvider produces the free-form text fields of a record
type TextProvider interface {
	Company() string
	Phone() string
	Contact() string
}

// RecordGenerator builds synthetic records from the region lookup table
type RecordGenerator struct {
	regions []models.Region
	text    TextProvider
	rng     *rand.Rand
}

// NewRecordGenerator creates a generator. A zero seed picks a random one.
func NewRecordGenerator(text TextProvider, seed uint64) *RecordGenerator {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &RecordGenerator{
		regions: models.Regions(),
		text:    text,
		rng:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Generate returns count fresh records. Negative counts yield an empty slice.
func (g *RecordGenerator) Generate(count int) []models.Record {
	if count < 0 {
		count = 0
	}

	out := make([]models.Record, 0, count)
	for range count {
		out = append(out, g.next())
	}
	return out
}

func (g *RecordGenerator) next() models.Record {
	region := g.regions[g.rng.IntN(len(g.regions))]
	municipality := region.Municipalities[g.rng.IntN(len(region.Municipalities))]

	// recent is drawn from [0,total], not clamped after independent sampling
	total := g.rng.Uint32N(models.MaxTotalOrder + 1)
	recent := g.rng.Uint32N(total + 1)

	return models.Record{
		ID:           uuid.New(),
		Region:       region.Name,
		Municipality: municipality,
		Company:      g.text.Company(),
		Phone:        g.text.Phone(),
		Contact:      g.text.Contact(),
		TotalOrder:   total,
		RecentOrder:  recent,
	}
}
