package engine

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd-tools/databook/pkg/models/domain"
)

func TestCalculateTurnoverRatios(t *testing.T) {
	c := NewKPICalculator(nil)

	pl := &domain.ProfitLoss{
		Year:      2022,
		Revenue:   dec("360000"),
		Purchases: dec("120000"),
	}
	bs := &domain.BalanceSheet{
		Year:        2022,
		Receivables: dec("43200"),
		Payables:    dec("14400"),
		Inventory:   dec("12000"),
	}

	kpis := c.Calculate(pl, bs)

	// DSO = 43200 / (360000 * 1.20) * 360 = 36 days
	assert.True(t, kpis.DSO.Equal(dec("36")), "DSO %s", kpis.DSO)
	// DPO = 14400 / (120000 * 1.20) * 360 = 36 days
	assert.True(t, kpis.DPO.Equal(dec("36")), "DPO %s", kpis.DPO)
	// DIO = 12000 / 120000 * 360 = 36 days
	assert.True(t, kpis.DIO.Equal(dec("36")), "DIO %s", kpis.DIO)
}

func TestCalculateRatiosStayZeroWithoutDenominator(t *testing.T) {
	c := NewKPICalculator(nil)

	pl := &domain.ProfitLoss{Year: 2022}
	bs := &domain.BalanceSheet{
		Year:        2022,
		Receivables: dec("5000"),
		Payables:    dec("3000"),
		Inventory:   dec("1000"),
	}

	kpis := c.Calculate(pl, bs)

	assert.True(t, kpis.DSO.IsZero(), "no revenue, no DSO")
	assert.True(t, kpis.DPO.IsZero(), "no purchases, no DPO")
	assert.True(t, kpis.DIO.IsZero(), "no purchases, no DIO")
}

func TestCalculateAppliesQoEAdjustments(t *testing.T) {
	adjustments := map[int]map[string]decimal.Decimal{
		2022: {
			"Rémunération dirigeant": dec("80000"),
			"Loyer sous-évalué":      dec("-30000"),
		},
	}
	c := NewKPICalculator(adjustments)

	pl := &domain.ProfitLoss{Year: 2022, Revenue: dec("2000000"), Purchases: dec("1500000")}
	bs := &domain.BalanceSheet{Year: 2022}

	kpis := c.Calculate(pl, bs)

	// EBITDA 500000 + 80000 - 30000 = 550000
	assert.True(t, kpis.EBITDA.Equal(dec("500000")))
	assert.True(t, kpis.AdjustedEBITDA().Equal(dec("550000")))
}

func TestAdjustedEBITDAWithoutAdjustments(t *testing.T) {
	kpis := &domain.KPIs{EBITDA: dec("100")}
	assert.True(t, kpis.AdjustedEBITDA().Equal(dec("100")))
}

func TestCalculateMultiYearDropsUnmatchedYears(t *testing.T) {
	c := NewKPICalculator(nil)

	plList := []*domain.ProfitLoss{
		{Year: 2021, Revenue: dec("100")},
		{Year: 2022, Revenue: dec("200")},
	}
	balances := []*domain.BalanceSheet{
		{Year: 2022},
	}

	kpisList := c.CalculateMultiYear(plList, balances)

	require.Len(t, kpisList, 1)
	assert.Equal(t, 2022, kpisList[0].Year)
}

func TestBuildSynthesisTableScalesToThousands(t *testing.T) {
	c := NewKPICalculator(nil)

	kpisList := []*domain.KPIs{
		{
			Year:    2022,
			Revenue: dec("1234000"),
			EBITDA:  dec("250000"),
		},
	}

	rows := c.BuildSynthesisTable(kpisList)

	require.Len(t, rows, 1)
	assert.True(t, rows[0].Revenue.Equal(dec("1234")))
	assert.True(t, rows[0].EBITDA.Equal(dec("250")))
	assert.False(t, rows[0].HasAdjustments)
}

func TestBuildSynthesisTableFlagsAdjustedYears(t *testing.T) {
	c := NewKPICalculator(nil)

	kpisList := []*domain.KPIs{
		{
			Year:           2022,
			EBITDA:         dec("500000"),
			QoEAdjustments: map[string]decimal.Decimal{"Management fees": dec("50000")},
		},
	}

	rows := c.BuildSynthesisTable(kpisList)

	require.Len(t, rows, 1)
	assert.True(t, rows[0].HasAdjustments)
	assert.True(t, rows[0].AdjustedEBITDA.Equal(dec("550")))
}
