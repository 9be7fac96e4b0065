package util

import (
	"pellematic2mqtt/internal/config"

	"go.uber.org/zap"
)

func LoadTestConfig() config.Config {
	return config.Config{
		LogLevel: zap.DebugLevel,
		Touch: config.TouchConfig{
			Host:               "-.-.-.-",
			Port:               4321,
			Password:           "0000",
			Charset:            "ISO-8859-1",
			FetchTimeoutMillis: 3000,
		},
		MQTT: config.MQTTConfig{
			Host:              "localhost",
			Port:              1883,
			BaseTopic:         "pellematic",
			HADiscoveryEnable: true,
			HADiscoveryTopic:  "homeassistant",
		},
		MonitorConfig: config.MonitorConfig{
			PollIntervalMillis:  30000,
			RetryIntervalMillis: 30000,
		},
		Port: 8080,
	}
}
