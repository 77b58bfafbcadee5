// Package mqtt provides MQTT client connectivity for Fleet Core.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// Fleet Core uses MQTT as the command channel to physical endpoints (lighting,
// relay, IR, and modbus controllers). Commands are published to a per-device
// request topic; devices publish confirmations to a per-request response topic.
//
//	Fleet Core ↔ MQTT Broker ↔ Field Controllers
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	err = client.Subscribe(mqtt.Topics{}.AllScheduleResponses(), 1,
//	    func(topic string, payload []byte) error {
//	        // route confirmation to the waiting session
//	        return nil
//	    })
package mqtt
