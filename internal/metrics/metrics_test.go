package metrics

import (
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"

	"actionScope/internal/model"
)

func family(t *testing.T, r *Recorder, name string) *dto.MetricFamily {
	t.Helper()
	families, err := r.Gatherer().Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == name {
			return f
		}
	}
	t.Fatalf("metric %s not gathered", name)
	return nil
}

func counterByLabel(f *dto.MetricFamily, value string) float64 {
	for _, m := range f.GetMetric() {
		for _, l := range m.GetLabel() {
			if l.GetValue() == value {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestObserveActions(t *testing.T) {
	r := New()
	r.ObserveActions([]model.Action{
		{Kind: model.KindTransfer},
		{Kind: model.KindTransfer},
		{Kind: model.KindUnclassified, Unclassified: &model.Unclassified{Reason: model.ReasonNoMatch}},
	})

	actions := family(t, r, "actionscope_actions_total")
	require.Equal(t, 2.0, counterByLabel(actions, "transfer"))
	require.Equal(t, 1.0, counterByLabel(actions, "unclassified"))

	unclassified := family(t, r, "actionscope_unclassified_total")
	require.Equal(t, 1.0, counterByLabel(unclassified, model.ReasonNoMatch))
}

func TestObserveBlock(t *testing.T) {
	r := New()
	r.ObserveBlock(20 * time.Millisecond)
	r.ObserveBlock(30 * time.Millisecond)
	r.SetLastBlock(101)

	require.Equal(t, 2.0, family(t, r, "actionscope_blocks_total").GetMetric()[0].GetCounter().GetValue())
	require.Equal(t, 101.0, family(t, r, "actionscope_last_block").GetMetric()[0].GetGauge().GetValue())
	require.Equal(t, uint64(2), family(t, r, "actionscope_block_duration_seconds").GetMetric()[0].GetHistogram().GetSampleCount())
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder
	r.ObserveActions([]model.Action{{Kind: model.KindSwap}})
	r.ObserveBlock(time.Second)
	r.SetLastBlock(1)
}
