package lora

// RxPacket is a received LoRa frame plus the metadata the chip reports
// alongside it. Field naming follows the Payload/Snr/Rssi convention
// already used by sx1276.RxPacket in the tve-devices driver.
type RxPacket struct {
	Payload  []byte
	TicksMs  int64
	Snr      float32
	Rssi     int8
	ValidCrc bool
}
