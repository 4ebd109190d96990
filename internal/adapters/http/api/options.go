package api

// Option configures a Server.
type Option func(*Server)

// WithPrefix sets the path prefix of the business routes. An empty prefix
// mounts them at the root.
func WithPrefix(prefix string) Option {
	return func(s *Server) {
		s.prefix = normalizePrefix(prefix)
	}
}

// WithVersion sets the version reported by GET /.
func WithVersion(version string) Option {
	return func(s *Server) {
		if version != "" {
			s.version = version
		}
	}
}
