package appsvc

// AppConfig holds configuration parameters for the app controller.
type AppConfig struct {
	// OptimisticClose closes popups before profile and avatar updates are sent
	// instead of after they succeed. Default is true.
	OptimisticClose bool `env:"OPTIMISTIC_CLOSE" default:"true"`

	// ProbeLinks verifies a new card's link points at a decodable image before
	// the card is created. Default is false.
	ProbeLinks bool `env:"PROBE_LINKS" default:"false"`
}
