package alarmstore

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// alarmYAML is the fixture shape for seeding a store from a YAML file.
type alarmYAML struct {
	AlarmName  string `yaml:"name"`
	Message    string `yaml:"message,omitempty"`
	AlarmClass string `yaml:"class,omitempty"`
	AlarmGroup string `yaml:"group,omitempty"`
	Severity   int    `yaml:"severity"`
	EventTime  string `yaml:"event_time"`
	AlarmState string `yaml:"state,omitempty"`
	Status     string `yaml:"status,omitempty"`
	Acked      bool   `yaml:"acked,omitempty"`
	Enabled    bool   `yaml:"enabled"`
	Suppressed bool   `yaml:"suppressed,omitempty"`
}

// LoadFixture reads alarm records from a YAML file.
func LoadFixture(path string) ([]Alarm, error) {
	// #nosec G304 -- Path is from configuration, not user input
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read alarm fixture: %w", err)
	}
	var raw []alarmYAML
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse alarm fixture YAML: %w", err)
	}
	alarms := make([]Alarm, 0, len(raw))
	for _, r := range raw {
		ts, err := time.Parse(time.RFC3339, r.EventTime)
		if err != nil {
			return nil, fmt.Errorf("alarm %q: bad event time %q", r.AlarmName, r.EventTime)
		}
		alarms = append(alarms, Alarm{
			AlarmName:  r.AlarmName,
			Message:    r.Message,
			AlarmClass: r.AlarmClass,
			AlarmGroup: r.AlarmGroup,
			Severity:   r.Severity,
			EventTime:  ts,
			AlarmState: r.AlarmState,
			Status:     r.Status,
			Acked:      r.Acked,
			Enabled:    r.Enabled,
			Suppressed: r.Suppressed,
		})
	}
	return alarms, nil
}
