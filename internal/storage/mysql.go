package storage

import (
	"github.com/go-sql-driver/mysql"

	"prodboard/internal/core"
)

const mysqlRangeFilter = "DATE(p.data_hora) BETWEEN ? AND ?"

// MySQLDialect targets the production MySQL/MariaDB server.
type MySQLDialect struct{}

func (MySQLDialect) Name() string       { return "mysql" }
func (MySQLDialect) DriverName() string { return "mysql" }

func (MySQLDialect) DSN(cfg core.ConnectionConfig, opts Options) (string, error) {
	mc := mysql.NewConfig()
	mc.Net = "tcp"
	mc.Addr = cfg.Address()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.DBName = opts.Database
	mc.ParseTime = true
	mc.Collation = "utf8mb4_unicode_ci"
	if opts.ConnectTimeout > 0 {
		mc.Timeout = opts.ConnectTimeout
	}
	return mc.FormatDSN(), nil
}

func (MySQLDialect) InitStatements() []string {
	return []string{
		"SET NAMES utf8mb4 COLLATE utf8mb4_unicode_ci",
		"SET CHARACTER SET utf8mb4",
	}
}

func (MySQLDialect) Queries() Queries {
	return Queries{
		TotalCount: `SELECT COUNT(*) AS total FROM tb_prod p WHERE ` + mysqlRangeFilter,

		HourlyCounts: `SELECT HOUR(p.data_hora) AS hora, COUNT(*) AS quantidade
			FROM tb_prod p WHERE ` + mysqlRangeFilter + `
			GROUP BY HOUR(p.data_hora) ORDER BY hora`,

		MaterialCounts: `SELECT m.material, COUNT(p.id_prod) AS quantidade
			FROM tb_material m
			LEFT JOIN tb_prod p ON p.material = m.id_material AND ` + mysqlRangeFilter + `
			GROUP BY m.id_material, m.material ORDER BY m.id_material`,

		ColorCounts: `SELECT c.cor, COUNT(p.id_prod) AS quantidade
			FROM tb_cor c
			LEFT JOIN tb_prod p ON p.cor = c.id_cor AND ` + mysqlRangeFilter + `
			GROUP BY c.id_cor, c.cor ORDER BY c.id_cor`,

		SizeCounts: `SELECT t.tamanho, COUNT(p.id_prod) AS quantidade
			FROM tb_tamanho t
			LEFT JOIN tb_prod p ON p.tamanho = t.id_tamanho AND ` + mysqlRangeFilter + `
			GROUP BY t.id_tamanho, t.tamanho ORDER BY t.id_tamanho`,

		ProductionRecords: `SELECT p.id_prod, p.data_hora, c.cor, m.material, t.tamanho
			FROM tb_prod p
			JOIN tb_cor c ON p.cor = c.id_cor
			JOIN tb_material m ON p.material = m.id_material
			JOIN tb_tamanho t ON p.tamanho = t.id_tamanho
			WHERE ` + mysqlRangeFilter + `
			ORDER BY p.data_hora DESC`,

		DailyMaterialCounts: `SELECT DATE(p.data_hora) AS dia, m.material, COUNT(*) AS quantidade
			FROM tb_prod p JOIN tb_material m ON p.material = m.id_material
			WHERE ` + mysqlRangeFilter + `
			GROUP BY DATE(p.data_hora), m.id_material, m.material
			ORDER BY dia, m.id_material`,

		DailySizeCounts: `SELECT DATE(p.data_hora) AS dia, t.tamanho, COUNT(*) AS quantidade
			FROM tb_prod p JOIN tb_tamanho t ON p.tamanho = t.id_tamanho
			WHERE ` + mysqlRangeFilter + `
			GROUP BY DATE(p.data_hora), t.id_tamanho, t.tamanho
			ORDER BY dia, t.id_tamanho`,

		LatestActivities: `SELECT p.id_prod, p.data_hora, c.cor, m.material, t.tamanho
			FROM tb_prod p
			JOIN tb_cor c ON p.cor = c.id_cor
			JOIN tb_material m ON p.material = m.id_material
			JOIN tb_tamanho t ON p.tamanho = t.id_tamanho
			ORDER BY p.data_hora DESC, p.id_prod DESC LIMIT ?`,
	}
}
