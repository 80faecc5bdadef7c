package cpd_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/probflow/bayesnet/internal/cpd"
	"github.com/probflow/bayesnet/internal/dataset"
)

func weatherData(t *testing.T) *dataset.DataSet {
	t.Helper()
	rain := dataset.NewAttribute("rain", []string{"yes", "no"})
	wet := dataset.NewAttribute("wet", []string{"yes", "no"})
	attrs := dataset.NewSet()
	attrs.Add(rain)
	attrs.Add(wet)

	instances := []dataset.Instance{
		{"rain": "yes", "wet": "yes"},
		{"rain": "yes", "wet": "yes"},
		{"rain": "yes", "wet": "no"},
		{"rain": "no", "wet": "no"},
		{"rain": "no", "wet": "no"},
		{"rain": "no", "wet": "yes"},
	}
	return dataset.New(attrs, instances)
}

func attr(t *testing.T, ds *dataset.DataSet, name string) *dataset.Attribute {
	t.Helper()
	a, ok := ds.Attributes().ByName(name)
	require.True(t, ok, "attribute %s", name)
	return a
}

func TestBuild_Marginal(t *testing.T) {
	ds := weatherData(t)
	rain := attr(t, ds, "rain")

	tree, err := cpd.Build(ds, []*dataset.Attribute{rain}, 0)
	require.NoError(t, err)

	// 3 of 6 instances have rain=yes.
	p, err := tree.Prob(dataset.Instance{"rain": "yes"})
	require.NoError(t, err)
	require.InDelta(t, 0.5, p, 1e-9)
}

func TestBuild_MarginalWithLaplace(t *testing.T) {
	ds := weatherData(t)
	rain := attr(t, ds, "rain")

	tree, err := cpd.Build(ds, []*dataset.Attribute{rain}, 1)
	require.NoError(t, err)

	// (3+1) / (6+1·2) = 0.5
	p, err := tree.Prob(dataset.Instance{"rain": "yes"})
	require.NoError(t, err)
	require.InDelta(t, 4.0/8.0, p, 1e-9)
}

func TestBuild_Conditional(t *testing.T) {
	ds := weatherData(t)
	rain := attr(t, ds, "rain")
	wet := attr(t, ds, "wet")

	tree, err := cpd.Build(ds, []*dataset.Attribute{rain, wet}, 0)
	require.NoError(t, err)

	// P(wet=yes | rain=yes) = 2/3
	p, err := tree.Prob(dataset.Instance{"rain": "yes", "wet": "yes"})
	require.NoError(t, err)
	require.InDelta(t, 2.0/3.0, p, 1e-9)

	// P(wet=yes | rain=no) = 1/3
	p, err = tree.Prob(dataset.Instance{"rain": "no", "wet": "yes"})
	require.NoError(t, err)
	require.InDelta(t, 1.0/3.0, p, 1e-9)
}

func TestBuild_DistributionSumsToOne(t *testing.T) {
	ds := weatherData(t)
	rain := attr(t, ds, "rain")
	wet := attr(t, ds, "wet")

	tree, err := cpd.Build(ds, []*dataset.Attribute{rain, wet}, 1)
	require.NoError(t, err)

	for _, rv := range rain.Values() {
		dist, err := tree.Distribution(dataset.Instance{"rain": rv})
		require.NoError(t, err)
		sum := 0.0
		for _, p := range dist {
			sum += p
		}
		require.InDelta(t, 1.0, sum, 1e-9, "rain=%s", rv)
	}
}

func TestBuild_RecordsAttributeList(t *testing.T) {
	ds := weatherData(t)
	rain := attr(t, ds, "rain")
	wet := attr(t, ds, "wet")

	tree, err := cpd.Build(ds, []*dataset.Attribute{rain, wet}, 1)
	require.NoError(t, err)

	got := tree.Attributes()
	require.Len(t, got, 2)
	require.Equal(t, "rain", got[0].Name())
	require.Equal(t, "wet", got[1].Name())
	require.Equal(t, "wet", tree.Target().Name())
}

func TestBuild_UnseenParentValueSmoothed(t *testing.T) {
	// No instance has sprinkler=on; with smoothing the leaf under that
	// branch must still be a proper uniform distribution.
	sprinkler := dataset.NewAttribute("sprinkler", []string{"on", "off"})
	wet := dataset.NewAttribute("wet", []string{"yes", "no"})
	attrs := dataset.NewSet()
	attrs.Add(sprinkler)
	attrs.Add(wet)
	ds := dataset.New(attrs, []dataset.Instance{
		{"sprinkler": "off", "wet": "no"},
		{"sprinkler": "off", "wet": "no"},
	})

	tree, err := cpd.Build(ds, []*dataset.Attribute{sprinkler, wet}, 1)
	require.NoError(t, err)

	p, err := tree.Prob(dataset.Instance{"sprinkler": "on", "wet": "yes"})
	require.NoError(t, err)
	require.InDelta(t, 0.5, p, 1e-9)
}

func TestBuild_Errors(t *testing.T) {
	ds := weatherData(t)
	rain := attr(t, ds, "rain")
	outside := dataset.NewAttribute("wind", []string{"high", "low"})

	_, err := cpd.Build(ds, nil, 1)
	require.Error(t, err)

	_, err = cpd.Build(ds, []*dataset.Attribute{outside}, 1)
	require.Error(t, err)

	_, err = cpd.Build(ds, []*dataset.Attribute{rain, rain}, 1)
	require.Error(t, err)

	_, err = cpd.Build(ds, []*dataset.Attribute{rain}, -1)
	require.Error(t, err)
}

func TestProb_Errors(t *testing.T) {
	ds := weatherData(t)
	rain := attr(t, ds, "rain")
	wet := attr(t, ds, "wet")

	tree, err := cpd.Build(ds, []*dataset.Attribute{rain, wet}, 1)
	require.NoError(t, err)

	_, err = tree.Prob(dataset.Instance{"wet": "yes"})
	require.Error(t, err, "missing parent value")

	_, err = tree.Prob(dataset.Instance{"rain": "drizzle", "wet": "yes"})
	require.Error(t, err, "out-of-domain parent value")

	_, err = tree.Prob(dataset.Instance{"rain": "yes"})
	require.Error(t, err, "missing target value")
}

func TestBuild_ZeroLaplaceNoObservations(t *testing.T) {
	sky := dataset.NewAttribute("sky", []string{"clear", "overcast"})
	attrs := dataset.NewSet()
	attrs.Add(sky)
	ds := dataset.New(attrs, nil)

	tree, err := cpd.Build(ds, []*dataset.Attribute{sky}, 0)
	require.NoError(t, err)

	p, err := tree.Prob(dataset.Instance{"sky": "clear"})
	require.NoError(t, err)
	require.True(t, math.Abs(p) < 1e-12)
}
