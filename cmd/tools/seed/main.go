package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Generates a historical queue-snapshot CSV suitable for POST /v1/queue/upload.
// Patient counts follow the clinic's daily shape (morning rush, afternoon tail)
// with per-row jitter so training data is not perfectly flat.
func main() {
	days := flag.Int("days", 7, "Days of history to generate")
	departments := flag.String("departments", "General,Ortho,ENT,Cardiology,Pediatrics", "Comma-separated department names")
	output := flag.String("output", "./data/csv/seed_snapshots.csv", "Output CSV file")
	seed := flag.Int64("seed", 42, "Random seed for reproducible data")

	flag.Parse()

	if *days <= 0 {
		log.Fatal("Error: -days must be positive")
	}

	deptList := strings.Split(*departments, ",")
	for i := range deptList {
		deptList[i] = strings.TrimSpace(deptList[i])
	}

	if err := os.MkdirAll(filepath.Dir(*output), 0o755); err != nil {
		log.Fatalf("Error creating output directory: %v\n", err)
	}

	f, err := os.Create(*output)
	if err != nil {
		log.Fatalf("Error creating output file: %v\n", err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"department", "patients_waiting", "active_doctors", "avg_consultation_time", "timestamp"}
	if err := w.Write(header); err != nil {
		log.Fatalf("Error writing header: %v\n", err)
	}

	rng := rand.New(rand.NewSource(*seed))
	start := time.Now().UTC().AddDate(0, 0, -*days).Truncate(time.Hour)

	rows := 0
	for day := 0; day < *days; day++ {
		for hour := 8; hour <= 20; hour++ {
			ts := start.AddDate(0, 0, day).Add(time.Duration(hour) * time.Hour)
			for _, dept := range deptList {
				patients := baseLoad(hour) + rng.Intn(7) - 3
				if patients < 0 {
					patients = 0
				}
				doctors := 1 + rng.Intn(5)
				consult := 8.0 + rng.Float64()*8.0

				record := []string{
					dept,
					strconv.Itoa(patients),
					strconv.Itoa(doctors),
					strconv.FormatFloat(consult, 'f', 1, 64),
					ts.Format(time.RFC3339),
				}
				if err := w.Write(record); err != nil {
					log.Fatalf("Error writing record: %v\n", err)
				}
				rows++
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		log.Fatalf("Error flushing CSV: %v\n", err)
	}

	fmt.Printf("Wrote %d snapshot rows to %s\n", rows, *output)
}

// baseLoad mirrors the clinic's observed hourly demand
func baseLoad(hour int) int {
	switch {
	case hour >= 9 && hour <= 12:
		return 25
	case hour >= 13 && hour <= 16:
		return 15
	case hour >= 17 && hour <= 20:
		return 10
	default:
		return 5
	}
}
