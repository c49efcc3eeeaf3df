package storage

import (
	"prodboard/internal/core"

	_ "modernc.org/sqlite"
)

const sqliteRangeFilter = "date(p.data_hora) BETWEEN ? AND ?"

// SQLiteDialect reads a local database file with the production schema. It
// ignores the per-request host and credentials and is meant for development,
// demos and tests.
type SQLiteDialect struct {
	Path string
}

func (SQLiteDialect) Name() string       { return "sqlite" }
func (SQLiteDialect) DriverName() string { return "sqlite" }

func (d SQLiteDialect) DSN(core.ConnectionConfig, Options) (string, error) {
	return "file:" + d.Path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", nil
}

func (SQLiteDialect) InitStatements() []string {
	return nil
}

func (SQLiteDialect) Queries() Queries {
	return Queries{
		TotalCount: `SELECT COUNT(*) AS total FROM tb_prod p WHERE ` + sqliteRangeFilter,

		HourlyCounts: `SELECT CAST(strftime('%H', p.data_hora) AS INTEGER) AS hora, COUNT(*) AS quantidade
			FROM tb_prod p WHERE ` + sqliteRangeFilter + `
			GROUP BY hora ORDER BY hora`,

		MaterialCounts: `SELECT m.material, COUNT(p.id_prod) AS quantidade
			FROM tb_material m
			LEFT JOIN tb_prod p ON p.material = m.id_material AND ` + sqliteRangeFilter + `
			GROUP BY m.id_material, m.material ORDER BY m.id_material`,

		ColorCounts: `SELECT c.cor, COUNT(p.id_prod) AS quantidade
			FROM tb_cor c
			LEFT JOIN tb_prod p ON p.cor = c.id_cor AND ` + sqliteRangeFilter + `
			GROUP BY c.id_cor, c.cor ORDER BY c.id_cor`,

		SizeCounts: `SELECT t.tamanho, COUNT(p.id_prod) AS quantidade
			FROM tb_tamanho t
			LEFT JOIN tb_prod p ON p.tamanho = t.id_tamanho AND ` + sqliteRangeFilter + `
			GROUP BY t.id_tamanho, t.tamanho ORDER BY t.id_tamanho`,

		ProductionRecords: `SELECT p.id_prod, p.data_hora, c.cor, m.material, t.tamanho
			FROM tb_prod p
			JOIN tb_cor c ON p.cor = c.id_cor
			JOIN tb_material m ON p.material = m.id_material
			JOIN tb_tamanho t ON p.tamanho = t.id_tamanho
			WHERE ` + sqliteRangeFilter + `
			ORDER BY p.data_hora DESC`,

		DailyMaterialCounts: `SELECT date(p.data_hora) AS dia, m.material, COUNT(*) AS quantidade
			FROM tb_prod p JOIN tb_material m ON p.material = m.id_material
			WHERE ` + sqliteRangeFilter + `
			GROUP BY dia, m.id_material, m.material
			ORDER BY dia, m.id_material`,

		DailySizeCounts: `SELECT date(p.data_hora) AS dia, t.tamanho, COUNT(*) AS quantidade
			FROM tb_prod p JOIN tb_tamanho t ON p.tamanho = t.id_tamanho
			WHERE ` + sqliteRangeFilter + `
			GROUP BY dia, t.id_tamanho, t.tamanho
			ORDER BY dia, t.id_tamanho`,

		LatestActivities: `SELECT p.id_prod, p.data_hora, c.cor, m.material, t.tamanho
			FROM tb_prod p
			JOIN tb_cor c ON p.cor = c.id_cor
			JOIN tb_material m ON p.material = m.id_material
			JOIN tb_tamanho t ON p.tamanho = t.id_tamanho
			ORDER BY p.data_hora DESC, p.id_prod DESC LIMIT ?`,
	}
}
