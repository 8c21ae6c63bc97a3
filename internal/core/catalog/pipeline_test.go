package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticRecords struct {
	records []RawRecord
	err     error
}

func (s staticRecords) FetchRecords(context.Context) ([]RawRecord, error) {
	return s.records, s.err
}

type recordingImages struct {
	seen int
}

func (r *recordingImages) AttachImages(_ context.Context, drinks []*Drink) {
	r.seen = len(drinks)
	for _, d := range drinks {
		d.ImageInfo = &ImageInfo{MimeType: "image/jpeg"}
	}
}

func TestPipelineBuild(t *testing.T) {
	gin := row("Q1", "Gin Tonic", "Gin", "5", "centilitre")
	gin.OffCategory = strp("gins")
	tonic := row("Q1", "Gin Tonic", "Tonic water", "10", "centilitre")
	rum := row("Q2", "Rum Shot", "Rum", "4", "centilitre")
	rum.AlcoholRaw = strp("40")

	lookup := newFakeLookup(map[string]float64{"gins": 40})
	images := &recordingImages{}
	pipeline := NewPipeline(staticRecords{records: []RawRecord{gin, tonic, rum}}, NewEnricher(lookup), images)

	cat, err := pipeline.Build(context.Background())
	require.NoError(t, err)

	require.Len(t, cat.Drinks, 2)
	assert.InDelta(t, 20.0, cat.Drinks[0].AlcoholVolume, 1e-9)
	assert.InDelta(t, 150.0, cat.Drinks[0].TotalVolume, 1e-9)
	assert.InDelta(t, 16.0, cat.Drinks[1].AlcoholVolume, 1e-9)
	assert.Equal(t, 2, images.seen)
	assert.NotNil(t, cat.Drinks[0].ImageInfo)
}

func TestPipelineFetchFailure(t *testing.T) {
	pipeline := NewPipeline(staticRecords{err: errors.New("timeout")}, nil, nil)

	cat, err := pipeline.Build(context.Background())
	assert.Nil(t, cat)
	assert.Error(t, err)
}

func TestPipelineStrictEnrichmentFailure(t *testing.T) {
	gin := row("Q1", "Gin Tonic", "Gin", "5", "centilitre")
	gin.OffCategory = strp("gins")
	lookup := newFakeLookup(nil)
	lookup.errs["gins"] = errors.New("bad gateway")

	pipeline := NewPipeline(staticRecords{records: []RawRecord{gin}}, NewEnricher(lookup, WithStrict(true)), nil)

	cat, err := pipeline.Build(context.Background())
	assert.Nil(t, cat)
	assert.Error(t, err)
}
