package server

// endpoints lists the routes served, for the startup log
var endpoints = []string{
	"GET  /health",
	"GET  /stats",
	"GET  /templates",
	"POST /resume/parse",
	"POST /resume/render",
}

// displayServerInfo logs the server configuration at startup
func (s *Server) displayServerInfo() {
	s.Logger.Info("Available endpoints", "endpoints", endpoints)
	s.displayAuthInfo()
	s.displayRequestLimitInfo()
	s.displayRateLimitInfo()
}

// displayAuthInfo logs authentication configuration
func (s *Server) displayAuthInfo() {
	if len(s.APIKeys) > 0 {
		s.Logger.Info("API authentication enabled", "keys_configured", len(s.APIKeys))
		return
	}
	s.Logger.Warn("API authentication disabled, /resume endpoints are publicly accessible")
}

// displayRequestLimitInfo logs request size limit configuration
func (s *Server) displayRequestLimitInfo() {
	if s.MaxRequestSize > 0 {
		s.Logger.Info("Request size limit enabled",
			"bytes", s.MaxRequestSize,
			"megabytes", float64(s.MaxRequestSize)/(1024*1024))
		return
	}
	s.Logger.Warn("Request size limit disabled")
}

// displayRateLimitInfo logs rate limiting configuration
func (s *Server) displayRateLimitInfo() {
	if s.RateLimit == nil || !s.RateLimit.Enabled {
		s.Logger.Warn("Rate limiting disabled")
		return
	}
	s.Logger.Info("Rate limiting enabled",
		"requests_per_min", s.RateLimit.RequestsPerMin,
		"burst", s.RateLimit.BurstCapacity,
		"by_api_key", s.RateLimit.ByAPIKey,
		"by_ip", s.RateLimit.ByIP)
}
