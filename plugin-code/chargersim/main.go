// chargersim simulates the external charger producer for development and
// manual end-to-end runs against the bridge. It implements the producer's
// process-boundary contract:
//
//   - default mode: print exactly one snapshot JSON document, then exit 0
//   - --monitor:    print one BridgeEvent JSON document per line, forever
//
// Point PRODUCER_PATH at the built binary to run the bridge without charger
// hardware on the network.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"
)

type record struct {
	IP                string  `json:"ip"`
	SystemIP          string  `json:"system_ip"`
	HostnameInfo      string  `json:"hostname_info"`
	Status            string  `json:"status"`
	ChargerVendor     string  `json:"charger_vendor"`
	ChargerModel      string  `json:"charger_model"`
	SystemTemp        float64 `json:"system_temp"`
	ACVoltage         float64 `json:"ac_voltage"`
	AvailablePower    float64 `json:"available_power"`
	Current           float64 `json:"current"`
	CurrentOffered    float64 `json:"current_offered"`
	Energy            float64 `json:"energy"`
	EVSEConnectorType string  `json:"evse_connector_type"`
	EVSEPPState       string  `json:"evse_pp_state"`
}

var (
	monitorMode = flag.Bool("monitor", false, "Emit continuous status updates instead of one snapshot")
	interval    = flag.Duration("interval", 3*time.Second, "Update interval in monitor mode")
	fleet       = flag.Int("fleet", 3, "Number of simulated chargers")
	fail        = flag.Bool("fail", false, "Exit with a failure document (default mode only)")
)

var statuses = []string{"Available", "Charging", "Preparing", "SuspendedEV", "Faulted"}

func main() {
	flag.Parse()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if *monitorMode {
		runMonitor()
		return
	}
	runSnapshot()
}

func runSnapshot() {
	if *fail {
		emit(map[string]any{
			"success": false,
			"message": "No devices found on the network.",
			"version": 2,
		})
		return
	}

	devices := make([]record, 0, *fleet)
	for i := 0; i < *fleet; i++ {
		devices = append(devices, simulate(i))
	}
	emit(map[string]any{"devices": devices, "version": 2})
}

func runMonitor() {
	slog.Info("chargersim monitoring", "fleet", *fleet, "interval", interval.String())
	for {
		for i := 0; i < *fleet; i++ {
			emit(map[string]any{
				"event": "charger_status_update",
				"data":  simulate(i),
			})
		}
		time.Sleep(*interval)
	}
}

func simulate(i int) record {
	return record{
		IP:                fmt.Sprintf("192.168.0.%d", 10+i),
		SystemIP:          fmt.Sprintf("192.168.0.%d", 10+i),
		HostnameInfo:      fmt.Sprintf("ray-02126009738120%04d", i),
		Status:            statuses[rand.Intn(len(statuses))],
		ChargerVendor:     "Ray",
		ChargerModel:      "Wallbox 22",
		SystemTemp:        30 + rand.Float64()*15,
		ACVoltage:         228 + rand.Float64()*6,
		AvailablePower:    22000,
		Current:           rand.Float64() * 32,
		CurrentOffered:    32,
		Energy:            rand.Float64() * 50,
		EVSEConnectorType: "Type2",
		EVSEPPState:       "Connected",
	}
}

func emit(document any) {
	out, err := json.Marshal(document)
	if err != nil {
		slog.Error("marshal failed", "error", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
