package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kijunserver/dataset"
)

func filingStatusTestRecords() []dataset.Record {
	return []dataset.Record{
		{InstitutionNumber: "1", AcceptanceNumber: "1", InstitutionName: "甲病院",
			BedCount: dataset.BedCount{dataset.Labeled("一般"): 200},
			FilingName: "基本診療料", FilingSymbol: "基"},
		{InstitutionNumber: "1", AcceptanceNumber: "1", InstitutionName: "甲病院",
			FilingName: "特掲診療料第1", FilingSymbol: "特1"},
		{InstitutionNumber: "2", AcceptanceNumber: "2", InstitutionName: "乙病院",
			BedCount: dataset.BedCount{dataset.Labeled("一般"): 50},
			FilingName: "基本診療料", FilingSymbol: "基"},
	}
}

func TestFilingStatusServiceCompute(t *testing.T) {
	datasets := newLoadedService(t, filingStatusTestRecords())
	svc := NewFilingStatusService(datasets)

	status, err := svc.Compute(StatusFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, status.TotalInstitutions)
	require.Len(t, status.Entries, 2)
	assert.Equal(t, "基本診療料", status.Entries[0].FilingName)
	assert.InDelta(t, 100.0, status.Entries[0].Percentage, 1e-9)
	assert.InDelta(t, 50.0, status.Entries[1].Percentage, 1e-9)
}

func TestFilingStatusServiceBedFilterChangesDenominator(t *testing.T) {
	datasets := newLoadedService(t, filingStatusTestRecords())
	svc := NewFilingStatusService(datasets)

	// 病床条件は集計前に適用され、割合の分母が絞り込み後の機関数になる
	status, err := svc.Compute(StatusFilter{
		BedCounts: map[string]dataset.BedCountRange{"一般": {Min: 100, Max: 500}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, status.TotalInstitutions)
	require.Len(t, status.Entries, 2)
	assert.InDelta(t, 100.0, status.Entries[0].Percentage, 1e-9)
}

func TestFilingStatusServiceCriteriaFilterKeepsDenominator(t *testing.T) {
	datasets := newLoadedService(t, filingStatusTestRecords())
	svc := NewFilingStatusService(datasets)

	// 施設基準の許可リストは集計後に適用され、分母は変わらない
	status, err := svc.Compute(StatusFilter{Criteria: []string{"特1"}})
	require.NoError(t, err)
	assert.Equal(t, 2, status.TotalInstitutions)
	require.Len(t, status.Entries, 1)
	assert.Equal(t, "特掲診療料第1", status.Entries[0].FilingName)
	assert.InDelta(t, 50.0, status.Entries[0].Percentage, 1e-9)
}

func TestFilingStatusServiceEmptySubset(t *testing.T) {
	datasets := newLoadedService(t, filingStatusTestRecords())
	svc := NewFilingStatusService(datasets)

	status, err := svc.Compute(StatusFilter{BedTypes: []string{"結核"}})
	require.NoError(t, err)
	assert.Zero(t, status.TotalInstitutions)
	assert.Empty(t, status.Entries)
}
