package core

// CaptureConfig contains configuration for pcap capture sessions.
type CaptureConfig struct {
	// Dir is the directory capture files are rotated into. When it does not
	// exist the capture stream falls back to the serial transport.
	Dir string `json:"dir" yaml:"dir"`

	// BaseName is the file prefix; files are named <BaseName>_<N>.pcap.
	BaseName string `json:"base_name" yaml:"baseName"`

	// BufferSize is the sink capacity in bytes.
	BufferSize int `json:"buffer_size" yaml:"bufferSize"`
}

// WardrivingConfig contains configuration for GPS-tagged CSV logging.
type WardrivingConfig struct {
	// Dir is the directory CSV files are rotated into.
	Dir string `json:"dir" yaml:"dir"`

	// BaseName is the file prefix; files are named <BaseName>_<N>.csv.
	BaseName string `json:"base_name" yaml:"baseName"`

	// BufferSize is the sink capacity in bytes.
	BufferSize int `json:"buffer_size" yaml:"bufferSize"`

	// WarnEvery is the 1-in-N sampling rate for implausible fix warnings.
	WarnEvery int `json:"warn_every" yaml:"warnEvery"`

	// InfoEvery is the 1-in-N sampling rate for the per-record info line.
	InfoEvery int `json:"info_every" yaml:"infoEvery"`

	// Seed seeds the warning sampler. Zero seeds from the clock.
	Seed int64 `json:"seed" yaml:"seed"`
}

// SerialConfig contains configuration for the framed fallback transport.
type SerialConfig struct {
	// Port is the UART device (e.g. /dev/ttyUSB0). Empty disables the UART.
	Port string `json:"port" yaml:"port"`

	// Baud is the UART baud rate.
	Baud int `json:"baud" yaml:"baud"`

	// Stdout mirrors the framed stream to standard output.
	Stdout bool `json:"stdout" yaml:"stdout"`

	// Listen is a TCP address host tools can connect to for the framed stream.
	Listen string `json:"listen" yaml:"listen"`

	// MaxClients caps concurrent TCP host-tool connections.
	MaxClients int `json:"max_clients" yaml:"maxClients"`
}

// MetricsConfig controls the periodic sink metrics reporter.
type MetricsConfig struct {
	// Interval is a Go duration string. Empty disables the reporter.
	Interval string `json:"interval" yaml:"interval"`

	// Format is "text" or "json".
	Format string `json:"format" yaml:"format"`
}
