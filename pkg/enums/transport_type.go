package enums

import "fmt"

// TransportType maps to the transport_type enum in Postgres.
type TransportType string

const (
	TransportWalking   TransportType = "walking"
	TransportRunning   TransportType = "running"
	TransportBicycle   TransportType = "bicycle"
	TransportCar       TransportType = "car"
	TransportBus       TransportType = "bus"
	TransportTrain     TransportType = "train"
	TransportBoat      TransportType = "boat"
	TransportAirplane  TransportType = "airplane"
	TransportMotorbike TransportType = "motorbike"
	TransportOther     TransportType = "other"
)

var validTransportTypes = []TransportType{
	TransportWalking,
	TransportRunning,
	TransportBicycle,
	TransportCar,
	TransportBus,
	TransportTrain,
	TransportBoat,
	TransportAirplane,
	TransportMotorbike,
	TransportOther,
}

// IsValid reports whether the value matches the canonical transport_type enum.
func (t TransportType) IsValid() bool {
	for _, candidate := range validTransportTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTransportType converts raw input into TransportType.
func ParseTransportType(value string) (TransportType, error) {
	for _, candidate := range validTransportTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transport type %q", value)
}
