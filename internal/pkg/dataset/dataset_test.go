package dataset

import (
	"testing"

	"github.com/go-openapi/testify/v2/assert"
	"github.com/go-openapi/testify/v2/require"
)

func TestSelectionWants(t *testing.T) {
	sel := Selection{
		"region":          "North",
		"employment_type": AllValues,
		"risk_grade":      "",
	}

	value, constrained := sel.Wants("region")
	assert.True(t, constrained)
	assert.Equal(t, "North", value)

	// the sentinel imposes no constraint, like an absent key
	_, constrained = sel.Wants("employment_type")
	assert.False(t, constrained)

	_, constrained = sel.Wants("risk_grade")
	assert.False(t, constrained)

	_, constrained = sel.Wants("unset")
	assert.False(t, constrained)

	assert.True(t, Selection{"region": AllValues}.IsEmpty())
	assert.True(t, Selection{}.IsEmpty())
	assert.False(t, sel.IsEmpty())
}

func TestFilterSingleDimension(t *testing.T) {
	ds := mustLoadTestdata(t)

	filtered := ds.Filter(Selection{"region": "North"})

	require.Equal(t, 3, filtered.Len())
	// original record order is preserved
	keys := make([]string, 0, filtered.Len())
	for _, rec := range filtered.Records() {
		keys = append(keys, rec.Key)
	}
	assert.Equal(t, []string{"1", "3", "12"}, keys)

	// the receiver is untouched
	assert.Equal(t, 12, ds.Len())
}

func TestFilterConjunction(t *testing.T) {
	ds := mustLoadTestdata(t)

	filtered := ds.Filter(Selection{
		"region":          "North",
		"employment_type": "Salaried",
	})

	require.Equal(t, 2, filtered.Len())
	for _, rec := range filtered.Records() {
		assert.Equal(t, "North", rec.Categories["region"])
		assert.Equal(t, "Salaried", rec.Categories["employment_type"])
	}
}

func TestFilterAllSentinelOnly(t *testing.T) {
	ds := mustLoadTestdata(t)

	filtered := ds.Filter(Selection{
		"region":          AllValues,
		"employment_type": AllValues,
		"risk_grade":      AllValues,
	})

	assert.Equal(t, ds.Len(), filtered.Len())
}

func TestFilterEmptyResult(t *testing.T) {
	ds := mustLoadTestdata(t)

	// no North Self-Employed row exists
	filtered := ds.Filter(Selection{
		"region":          "North",
		"employment_type": "Self-Employed",
	})

	assert.Equal(t, 0, filtered.Len())
	assert.Empty(t, filtered.Records())
}

func TestFilterIdempotent(t *testing.T) {
	ds := mustLoadTestdata(t)
	sel := Selection{"risk_grade": "A"}

	once := ds.Filter(sel)
	twice := once.Filter(sel)

	assert.Equal(t, once.Len(), twice.Len())
	assert.Equal(t, once.Records(), twice.Records())
}

func TestFilterOnLabel(t *testing.T) {
	ds := mustLoadTestdata(t)

	approved := ds.Filter(Selection{"target_label": "Approved"})

	require.Equal(t, 7, approved.Len())
	for _, rec := range approved.Records() {
		assert.InDelta(t, 0.0, rec.Values["target"], 1e-9)
	}
}

func TestCategoryResolvesLabels(t *testing.T) {
	ds := mustLoadTestdata(t)

	first := ds.Records()[0] // target=0
	second := ds.Records()[1] // target=1

	assert.Equal(t, "Approved", ds.Category(first, "target_label"))
	assert.Equal(t, "Rejected/Default", ds.Category(second, "target_label"))
	assert.Equal(t, "No", ds.Category(first, "delinquency_label"))
	assert.Equal(t, "Yes", ds.Category(second, "delinquency_label"))

	// plain dimensions pass through
	assert.Equal(t, "North", ds.Category(first, "region"))

	// unknown fields resolve to the null category
	assert.Empty(t, ds.Category(first, "no_such_field"))
}

func TestDistinctValues(t *testing.T) {
	ds := mustLoadTestdata(t)

	assert.Equal(t, []string{"East", "North", "South", "West"}, ds.DistinctValues("region"))
	assert.Equal(t, []string{"A", "B", "C"}, ds.DistinctValues("risk_grade"))
	assert.Equal(t, []string{"Approved", "Rejected/Default"}, ds.DistinctValues("target_label"))

	// distinct values on a filtered view only cover the remaining records
	filtered := ds.Filter(Selection{"region": "North"})
	assert.Equal(t, []string{"North"}, filtered.DistinctValues("region"))
}

func TestColumn(t *testing.T) {
	ds := mustLoadTestdata(t)

	column := ds.Column("target")
	require.Len(t, column, 12)
	assert.InDelta(t, 0.0, column[0], 1e-9)
	assert.InDelta(t, 1.0, column[1], 1e-9)

	assert.Empty(t, ds.Column("region")) // not a numeric column
}

func TestProfile(t *testing.T) {
	ds := mustLoadTestdata(t)

	p := ds.Profile()

	assert.Equal(t, 12, p.Rows)
	assert.Contains(t, p.Source, "applications.csv")

	// 7 dimensions plus 2 derived labels
	require.Len(t, p.Dimensions, 9)
	assert.Equal(t, "region", p.Dimensions[0].Name)
	assert.Equal(t, 4, p.Dimensions[0].Distinct)

	require.Len(t, p.Numerics, 6)
	incomes := p.Numerics[3]
	assert.Equal(t, "monthly_income", incomes.Name)
	assert.InDelta(t, 28000.0, incomes.Min, 1e-9)
	assert.InDelta(t, 72000.0, incomes.Max, 1e-9)
}

func TestProfileEmptyDataset(t *testing.T) {
	ds := mustLoadTestdata(t)

	p := ds.Filter(Selection{"region": "Nowhere"}).Profile()

	assert.Equal(t, 0, p.Rows)
	// numeric stats are undefined on an empty dataset
	assert.Empty(t, p.Numerics)
}
