package config

import "time"

const defaultPort = 8080

var defaultDB = DB{
	Host: "127.0.0.1",
	Port: "5432",
	User: "myuser",
	Pass: "mypassword",
	Name: "deliveries",
}

var defaultKafka = Kafka{
	EventsTopic: "delivery-events",
	IntakeTopic: "delivery-intake",
	GroupID:     "delivery-lifecycle",
}

var defaultAssignment = Assignment{
	MaxActiveLoad:      5,
	AutoAssignSchedule: "@every 30s",
	OperationTimeout:   3 * time.Second,
}

var defaultNotifier = Notifier{
	MaxAttempts: 4,
	BaseDelay:   150 * time.Millisecond,
	MaxDelay:    2 * time.Second,
	QueueSize:   1024,
	SendTimeout: 10 * time.Second,
}

var defaultRateLimit = RateLimit{
	Enabled: false,
	Limit:   100,
	Window:  time.Minute,
}

// DefaultPort returns the default port.
func DefaultPort() int {
	return defaultPort
}

// DefaultDB returns the default database settings.
func DefaultDB() DB {
	return defaultDB
}

// DefaultAssignment returns the default assignment settings.
func DefaultAssignment() Assignment {
	return defaultAssignment
}

// DefaultNotifier returns the default event publisher retry settings.
func DefaultNotifier() Notifier {
	return defaultNotifier
}

// Default returns a configuration with every default applied.
func Default() Config {
	return Config{
		Port:       defaultPort,
		DB:         defaultDB,
		Storage:    Storage{Driver: StoragePostgres},
		Redis:      Redis{LocationTTL: 15 * time.Minute},
		Kafka:      defaultKafka,
		Assignment: defaultAssignment,
		Notifier:   defaultNotifier,
		RateLimit:  defaultRateLimit,
		Log:        Log{Format: "json", Level: "info"},
	}
}
