package main

import (
	"flag"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/vitalwatch/vitalwatch/internal/models"
)

var patients = []string{"P001", "P002", "P003"}

func main() {
	apiURL := flag.String("api", "http://localhost:8000/api/telemetry", "telemetry endpoint")
	interval := flag.Duration("interval", 2*time.Second, "send cadence per patient batch")
	flag.Parse()

	log.Printf("Starting sensor simulation -> %s", *apiURL)
	log.Println("Press CTRL+C to stop.")

	client := resty.New().SetTimeout(5 * time.Second)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	for {
		select {
		case <-sigChan:
			log.Println("Stopping simulation.")
			return
		case <-ticker.C:
			for _, pid := range patients {
				// P001 is the unstable patient
				condition := "normal"
				if pid == "P001" && rand.Float64() < 0.3 {
					condition = "critical_spo2"
				}

				payload := generateVitals(pid, condition)
				resp, err := client.R().
					SetHeader("Content-Type", "application/json").
					SetBody(payload).
					Post(*apiURL)
				if err != nil {
					log.Printf("Error sending data for %s: %v", pid, err)
					continue
				}
				log.Printf("[%s] Sent: %dbpm, %d%% -> %d",
					pid, payload.Sensors.HeartRate, payload.Sensors.SpO2, resp.StatusCode())
			}
		}
	}
}

// generateVitals produces synthetic readings for one patient.
// Conditions: normal, critical_spo2, arrhythmia.
func generateVitals(patientID, condition string) models.TelemetryPayload {
	baseHR := 75
	baseSpO2 := 98
	baseSys := 120
	baseDia := 80

	switch condition {
	case "critical_spo2":
		baseSpO2 = 85 + rand.Intn(10)
		baseHR = 80 + rand.Intn(31) // compensatory tachycardia
	case "arrhythmia":
		choices := []int{45, 130, 60 + rand.Intn(41)}
		baseHR = choices[rand.Intn(len(choices))]
	}

	spo2 := baseSpO2 + rand.Intn(3) - 1
	if spo2 > 100 {
		spo2 = 100
	}

	activities := []string{"resting", "walking", "sitting"}

	return models.TelemetryPayload{
		PatientID: patientID,
		Timestamp: float64(time.Now().UnixMilli()) / 1000.0,
		Sensors: models.SensorReadings{
			HeartRate:   baseHR + rand.Intn(5) - 2,
			SpO2:        spo2,
			BPSystolic:  baseSys + rand.Intn(11) - 5,
			BPDiastolic: baseDia + rand.Intn(7) - 3,
			Activity:    activities[rand.Intn(len(activities))],
		},
	}
}
