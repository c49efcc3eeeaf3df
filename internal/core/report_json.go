package core

import (
	"time"

	"github.com/goccy/go-json"
)

// Category rows are keyed by their category name on the wire ("material",
// "cor", "tamanho"), which is what dashboard clients read.

type (
	materialCount struct {
		Material string `json:"material"`
		Quantity int64  `json:"quantidade"`
	}
	colorCount struct {
		Color    string `json:"cor"`
		Quantity int64  `json:"quantidade"`
	}
	sizeCount struct {
		Size     string `json:"tamanho"`
		Quantity int64  `json:"quantidade"`
	}
	dailyMaterialCount struct {
		Day      string `json:"dia"`
		Material string `json:"material"`
		Quantity int64  `json:"quantidade"`
	}
	dailySizeCount struct {
		Day      string `json:"dia"`
		Size     string `json:"tamanho"`
		Quantity int64  `json:"quantidade"`
	}
)

func convertRows[S, T any](rows []S, fn func(S) T) []T {
	out := make([]T, len(rows))
	for i, r := range rows {
		out[i] = fn(r)
	}
	return out
}

func (r DashboardReport) MarshalJSON() ([]byte, error) {
	hourly := r.Hourly
	if hourly == nil {
		hourly = []HourlyCount{}
	}
	return json.Marshal(struct {
		TotalPieces int64           `json:"totalPecasHoje"`
		Hourly      []HourlyCount   `json:"producaoHora"`
		Materials   []materialCount `json:"materiais"`
		Colors      []colorCount    `json:"cores"`
		Sizes       []sizeCount     `json:"tamanhos"`
	}{
		TotalPieces: r.TotalPieces,
		Hourly:      hourly,
		Materials: convertRows(r.Materials, func(c AggregatedCategory) materialCount {
			return materialCount{Material: c.Label, Quantity: c.Quantity}
		}),
		Colors: convertRows(r.Colors, func(c AggregatedCategory) colorCount {
			return colorCount{Color: c.Label, Quantity: c.Quantity}
		}),
		Sizes: convertRows(r.Sizes, func(c AggregatedCategory) sizeCount {
			return sizeCount{Size: c.Label, Quantity: c.Quantity}
		}),
	})
}

func (r FilteredReport) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		TotalPeriod int64                `json:"totalPeriodo"`
		ByMaterial  []dailyMaterialCount `json:"producaoPorMaterial"`
		BySize      []dailySizeCount     `json:"producaoPorTamanho"`
	}{
		TotalPeriod: r.TotalPeriod,
		ByMaterial: convertRows(r.ByMaterial, func(c DailyAggregatedCategory) dailyMaterialCount {
			return dailyMaterialCount{Day: c.Day, Material: c.Label, Quantity: c.Quantity}
		}),
		BySize: convertRows(r.BySize, func(c DailyAggregatedCategory) dailySizeCount {
			return dailySizeCount{Day: c.Day, Size: c.Label, Quantity: c.Quantity}
		}),
	})
}

// FullReport is the full-report row list. Its columns keep the headings of
// the legacy report ("ID", "Data e Hora", "Cor", "Material", "Tamanho").
type FullReport []ProductionRecord

type fullReportRow struct {
	ID        int64     `json:"ID"`
	Timestamp time.Time `json:"Data e Hora"`
	Color     string    `json:"Cor"`
	Material  string    `json:"Material"`
	Size      string    `json:"Tamanho"`
}

func (f FullReport) MarshalJSON() ([]byte, error) {
	return json.Marshal(convertRows(f, func(p ProductionRecord) fullReportRow {
		return fullReportRow{ID: p.ID, Timestamp: p.Timestamp, Color: p.Color, Material: p.Material, Size: p.Size}
	}))
}
