package fec

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func TestParseSemicolonDelimited(t *testing.T) {
	content := strings.Join([]string{
		"DateEcriture;CompteNum;Libelle;Debit;Credit",
		"2022-03-15;706000;Prestation de service;0,00;1000,00",
		"2022-03-15;411000;Client Alpha;1200,00;0,00",
	}, "\n")

	p := NewParser(writeTemp(t, "FEC2022.txt", []byte(content)))
	result, err := p.Parse()

	require.NoError(t, err)
	require.Len(t, result.Entries, 2)
	assert.Equal(t, 2, result.TotalRows)
	assert.False(t, result.HasErrors())

	e := result.Entries[0]
	assert.Equal(t, "706000", e.AccountNum)
	assert.Equal(t, "Prestation de service", e.Label)
	assert.True(t, e.Credit.Equal(dec("1000")))
	assert.Equal(t, 2022, e.SourceYear)
}

func TestParseTabDelimited(t *testing.T) {
	content := "EcritureDate\tCompteNum\tEcritureLib\tDebit\tCredit\n" +
		"20220315\t706000\tVente\t0,00\t500,00\n"

	p := NewParser(writeTemp(t, "ledger.txt", []byte(content)))
	result, err := p.Parse()

	require.NoError(t, err)
	require.Len(t, result.Entries, 1)
	assert.Equal(t, 15, result.Entries[0].Date.Day())
	assert.Equal(t, 0, result.Entries[0].SourceYear, "no FEC year in filename")
}

func TestParseRejectsInvalidAccountCode(t *testing.T) {
	content := strings.Join([]string{
		"Date;Compte;Libelle;Debit;Credit",
		"2022-03-15;706000;Vente;0,00;1000,00",
		"2022-03-15;890000;Bilan ouverture;1000,00;0,00",
		"2022-03-15;70A000;Compte invalide;0,00;50,00",
	}, "\n")

	p := NewParser(writeTemp(t, "FEC2022.txt", []byte(content))).WithErrorThreshold(80)
	result, err := p.Parse()

	require.NoError(t, err)
	require.Len(t, result.Entries, 1)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, "account", result.Errors[0].Column)
	assert.Equal(t, "890000", result.Errors[0].Value)
}

func TestParseRejectsImplausibleYear(t *testing.T) {
	content := strings.Join([]string{
		"Date;Compte;Libelle;Debit;Credit",
		"1850-03-15;706000;Vente;0,00;1000,00",
		"2022-03-15;706000;Vente;0,00;1000,00",
	}, "\n")

	p := NewParser(writeTemp(t, "FEC2022.txt", []byte(content))).WithErrorThreshold(80)
	result, err := p.Parse()

	require.NoError(t, err)
	require.Len(t, result.Entries, 1)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "date", result.Errors[0].Column)
	assert.Contains(t, result.Errors[0].Message, "1850")
}

func TestParseWindows1252Encoding(t *testing.T) {
	// "Rémunération" in Windows-1252: é is 0xE9, invalid as UTF-8.
	raw := []byte("Date;Compte;Libelle;Debit;Credit\n" +
		"01/03/2022;641000;R\xe9mun\xe9ration;1000,00;0,00\n")

	p := NewParser(writeTemp(t, "FEC2022.txt", raw))
	result, err := p.Parse()

	require.NoError(t, err)
	require.Len(t, result.Entries, 1)
	assert.Equal(t, "Rémunération", result.Entries[0].Label)
}

func TestParseUTF8BOM(t *testing.T) {
	raw := append([]byte{0xEF, 0xBB, 0xBF},
		[]byte("Date;Compte;Libelle;Debit;Credit\n2022-01-01;512000;Banque;10,00;0,00\n")...)

	p := NewParser(writeTemp(t, "FEC2022.txt", raw))
	result, err := p.Parse()

	require.NoError(t, err)
	require.Len(t, result.Entries, 1)
}

func TestParseCollectsRowErrorsBelowThreshold(t *testing.T) {
	rows := []string{"Date;Compte;Libelle;Debit;Credit"}
	for i := 0; i < 99; i++ {
		rows = append(rows, "2022-01-01;706000;Vente;0,00;10,00")
	}
	rows = append(rows, "not-a-date;706000;Vente;0,00;10,00")

	p := NewParser(writeTemp(t, "FEC2022.txt", []byte(strings.Join(rows, "\n"))))
	result, err := p.Parse()

	require.NoError(t, err, "1%% bad rows stays under the threshold")
	assert.Len(t, result.Entries, 99)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "date", result.Errors[0].Column)
	assert.InDelta(t, 99.0, result.SuccessRate(), 0.01)
}

func TestParseRejectsAboveErrorThreshold(t *testing.T) {
	content := strings.Join([]string{
		"Date;Compte;Libelle;Debit;Credit",
		"garbage;706000;Vente;0,00;10,00",
		"2022-01-01;706000;Vente;0,00;10,00",
	}, "\n")

	p := NewParser(writeTemp(t, "FEC2022.txt", []byte(content)))
	_, err := p.Parse()

	require.Error(t, err, "50%% failures exceed the 5%% default")
	assert.Contains(t, err.Error(), "threshold")
}

func TestParseMissingColumn(t *testing.T) {
	content := "Date;Compte;Debit;Credit\n2022-01-01;706000;0,00;10,00\n"

	p := NewParser(writeTemp(t, "FEC2022.txt", []byte(content)))
	_, err := p.Parse()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "label")
}

func TestParseSkipsEmptyRows(t *testing.T) {
	content := "Date;Compte;Libelle;Debit;Credit\n" +
		"2022-01-01;706000;Vente;0,00;10,00\n" +
		";;;;\n" +
		"2022-01-02;706000;Vente;0,00;20,00\n"

	p := NewParser(writeTemp(t, "FEC2022.txt", []byte(content)))
	result, err := p.Parse()

	require.NoError(t, err)
	assert.Len(t, result.Entries, 2)
	assert.Equal(t, 2, result.TotalRows, "empty rows are not counted")
}

func TestExtractSourceYear(t *testing.T) {
	assert.Equal(t, 2024, NewParser("844118190FEC20241231.txt").SourceYear())
	assert.Equal(t, 2022, NewParser("/data/FEC2022.csv").SourceYear())
	assert.Equal(t, 0, NewParser("ledger.csv").SourceYear())
}

func TestParseAmountForms(t *testing.T) {
	cases := map[string]string{
		"1234,56":   "1234.56",
		"1 234,56":  "1234.56",
		"1.234,56":  "1234.56",
		"1234.56":   "1234.56",
		"-500,00":   "-500",
		"":          "0",
		"  ":        "0",
		"12 345,67": "12345.67",
	}
	for input, want := range cases {
		got, err := ParseAmount(input)
		require.NoError(t, err, "input %q", input)
		assert.True(t, got.Equal(dec(want)), "input %q got %s", input, got)
	}

	_, err := ParseAmount("abc")
	assert.Error(t, err)
}
