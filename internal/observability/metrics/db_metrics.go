package metrics

import (
	"database/sql"
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func registerDBMetrics(db *sql.DB, logger *log.Logger) {
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "calculation_runs_stored",
			Help: "Calculation runs currently stored",
		},
		func() float64 {
			return queryCount(db, logger, "SELECT COUNT(*) FROM rule37_calculation_runs")
		},
	))

	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "calculation_runs_expired",
			Help: "Stored calculation runs past their retention deadline",
		},
		func() float64 {
			cutoff := time.Now().UTC()
			return queryCountArgs(db, logger, "SELECT COUNT(*) FROM rule37_calculation_runs WHERE expires_at <= $1", cutoff)
		},
	))
}

func queryCount(db *sql.DB, logger *log.Logger, query string) float64 {
	return queryCountArgs(db, logger, query)
}

func queryCountArgs(db *sql.DB, logger *log.Logger, query string, args ...any) float64 {
	if db == nil {
		return 0
	}
	var count int64
	if err := db.QueryRow(query, args...).Scan(&count); err != nil {
		if logger != nil {
			logger.Printf("metrics query failed: %v", err)
		}
		return 0
	}
	if count < 0 {
		return 0
	}
	return float64(count)
}
