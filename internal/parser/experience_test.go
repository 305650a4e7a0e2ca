package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumeforge/internal/types"
)

func TestExtractExperience(t *testing.T) {
	items := ExtractExperience([]Paragraph{
		{"Acme Corp - Senior Engineer (2019 - 2022)", "- Built X", "2019 - 2022", "- Led Y"},
		{"Beta Ltda - Dev Jr Jan 2017 - atual", "Suporte", "-"},
	})
	require.Len(t, items, 2)

	first := items[0]
	assert.Equal(t, "Acme Corp", types.Deref(first.Company))
	assert.Equal(t, "Senior Engineer (2019 - 2022)", first.Role)
	assert.Equal(t, "2019", types.Deref(first.StartDate))
	assert.Equal(t, "2022", types.Deref(first.EndDate))
	assert.Equal(t, []string{"Built X", "Led Y"}, first.Highlights)

	second := items[1]
	assert.Equal(t, "Beta Ltda", types.Deref(second.Company))
	assert.Equal(t, "Dev Jr Jan 2017 - atual", second.Role)
	assert.Equal(t, "Jan 2017", types.Deref(second.StartDate))
	assert.Equal(t, "atual", types.Deref(second.EndDate))
	assert.Equal(t, []string{"Suporte"}, second.Highlights)
}

func TestExtractExperienceWithoutCompany(t *testing.T) {
	items := ExtractExperience([]Paragraph{{"Software Engineer", "Wrote code"}})
	require.Len(t, items, 1)

	assert.Nil(t, items[0].Company)
	assert.Equal(t, "Software Engineer", items[0].Role)
	assert.Nil(t, items[0].StartDate)
	assert.Nil(t, items[0].EndDate)
	assert.Equal(t, []string{"Wrote code"}, items[0].Highlights)
}

func TestExtractExperienceOmitsEmptyRole(t *testing.T) {
	items := ExtractExperience([]Paragraph{{"Acme -", "did things"}})

	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestExtractExperiencePresentIsCaseInsensitive(t *testing.T) {
	items := ExtractExperience([]Paragraph{{"Gamma - Lead (2020 - Presente)"}})
	require.Len(t, items, 1)

	assert.Equal(t, "2020", types.Deref(items[0].StartDate))
	assert.Equal(t, "Presente", types.Deref(items[0].EndDate))
	assert.NotNil(t, items[0].Highlights)
}

func TestSplitDateRange(t *testing.T) {
	start, end := splitDateRange("2018 – 2020")
	assert.Equal(t, "2018", types.Deref(start))
	assert.Equal(t, "2020", types.Deref(end))

	start, end = splitDateRange("2018-01 - 2020")
	assert.Nil(t, start)
	assert.Nil(t, end)
}
