// Seed registers demo users against a running server, creates a property
// with units, and opens a batch of randomized maintenance requests so the
// dashboard has data to show.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
)

var requestTypes = []string{"plumbing", "electrical", "hvac", "appliance", "general"}
var priorities = []string{"low", "medium", "high"}

var titles = map[string][]string{
	"plumbing":   {"Leaking kitchen faucet", "Clogged bathroom drain", "Running toilet", "Low water pressure"},
	"electrical": {"Outlet not working", "Flickering hallway light", "Breaker keeps tripping"},
	"hvac":       {"AC not cooling", "Thermostat unresponsive", "Heater making noise"},
	"appliance":  {"Dishwasher not draining", "Fridge too warm", "Dryer not heating"},
	"general":    {"Broken window latch", "Squeaky door hinge", "Loose cabinet handle", "Wall scuff repair"},
}

func baseURL() string {
	if v := os.Getenv("SEED_BASE_URL"); v != "" {
		return v
	}
	return "http://localhost:8080"
}

func post(path, token string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, baseURL()+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s returned %d", path, resp.StatusCode)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

type loginResponse struct {
	Token string `json:"token"`
	User  struct {
		ID string `json:"id"`
	} `json:"user"`
}

func register(email, role, first, last string) (*loginResponse, error) {
	var resp loginResponse
	err := post("/api/auth/register", "", map[string]string{
		"email":      email,
		"password":   "seed-password-1",
		"first_name": first,
		"last_name":  last,
		"role":       role,
	}, &resp)
	if err != nil {
		// Already registered from a previous run; log in instead.
		err = post("/api/auth/login", "", map[string]string{
			"email":    email,
			"password": "seed-password-1",
		}, &resp)
	}
	return &resp, err
}

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	count := 40
	if v := os.Getenv("SEED_REQUESTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			count = n
		}
	}

	manager, err := register("manager@parkrow.test", "manager", "Morgan", "Hale")
	if err != nil {
		log.WithError(err).Fatal("failed to register manager")
	}
	tech, err := register("tech@parkrow.test", "field_technician", "Rae", "Okafor")
	if err != nil {
		log.WithError(err).Fatal("failed to register technician")
	}
	tenant, err := register("tenant@parkrow.test", "tenant", "Jules", "Marsh")
	if err != nil {
		log.WithError(err).Fatal("failed to register tenant")
	}

	var property struct {
		ID string `json:"id"`
	}
	err = post("/api/properties", manager.Token, map[string]string{
		"name":     "Parkrow Commons",
		"address":  "420 Alder Street",
		"city":     "Portland",
		"state":    "OR",
		"zip_code": "97204",
	}, &property)
	if err != nil {
		log.WithError(err).Fatal("failed to create property")
	}

	unitIDs := make([]string, 0, 6)
	for i := 1; i <= 6; i++ {
		var unit struct {
			ID string `json:"id"`
		}
		err = post(fmt.Sprintf("/api/properties/%s/units", property.ID), manager.Token, map[string]interface{}{
			"unit_number": fmt.Sprintf("%d0%d", (i+1)/2, i%2+1),
			"floor":       (i + 1) / 2,
			"bedrooms":    1 + rand.Intn(3),
			"bathrooms":   1.0,
		}, &unit)
		if err != nil {
			log.WithError(err).Fatal("failed to create unit")
		}
		unitIDs = append(unitIDs, unit.ID)
	}

	created := 0
	for i := 0; i < count; i++ {
		requestType := requestTypes[rand.Intn(len(requestTypes))]
		options := titles[requestType]
		var request struct {
			ID string `json:"id"`
		}
		err = post("/api/maintenance/requests", tenant.Token, map[string]interface{}{
			"property_id":  property.ID,
			"unit_id":      unitIDs[rand.Intn(len(unitIDs))],
			"request_type": requestType,
			"priority":     priorities[rand.Intn(len(priorities))],
			"title":        options[rand.Intn(len(options))],
			"description":  "Seeded demo request",
		}, &request)
		if err != nil {
			log.WithError(err).Warn("failed to create request")
			continue
		}
		created++

		// Walk a random share of requests through the lifecycle.
		if rand.Float64() < 0.6 {
			if err := post(fmt.Sprintf("/api/maintenance/requests/%s/assign", request.ID), manager.Token,
				map[string]string{"technician_id": tech.User.ID}, nil); err != nil {
				log.WithError(err).Warn("failed to assign request")
				continue
			}
			if rand.Float64() < 0.7 {
				post(fmt.Sprintf("/api/maintenance/requests/%s/status", request.ID), tech.Token,
					map[string]string{"status": "in_progress"}, nil)
				if rand.Float64() < 0.6 {
					post(fmt.Sprintf("/api/maintenance/requests/%s/status", request.ID), tech.Token,
						map[string]string{"status": "completed", "note": "Fixed and verified"}, nil)
					post(fmt.Sprintf("/api/maintenance/requests/%s/cost", request.ID), manager.Token,
						map[string]interface{}{"actual_cost": 40 + rand.Float64()*260}, nil)
				}
			}
		}
		time.Sleep(10 * time.Millisecond)
	}

	log.WithField("requests", created).Info("seed complete")
}
