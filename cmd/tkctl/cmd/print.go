package cmd

import (
	"fmt"

	"hapticrt/model"
)

func printEvent(ev model.Event) {
	switch ev.Kind {
	case model.EventDeviceAdded:
		fmt.Printf("  device added:   %s\n", ev.DeviceName)
	case model.EventDeviceRemoved:
		fmt.Printf("  device removed: %s\n", ev.DeviceName)
	case model.EventScanStarted:
		fmt.Println("  scan started")
	case model.EventScanStopped:
		fmt.Println("  scan stopped")
	case model.EventScanFailed:
		fmt.Printf("  scan failed:    %s\n", ev.Desc)
	case model.EventDisconnect:
		fmt.Println("  disconnected")
	case model.EventStop:
		fmt.Printf("  stopped handle: %d\n", ev.Handle)
	case model.EventStopAll:
		fmt.Println("  stopped all")
	case model.EventOther:
		fmt.Printf("  other:          %s\n", ev.Desc)
	}
}

func statusString(s model.ConnectionStatus) string {
	switch s {
	case model.StatusDisconnected:
		return "disconnected"
	case model.StatusConnecting:
		return "connecting"
	case model.StatusConnected:
		return "connected"
	case model.StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}
