package httpx

// Option tunes what LoggingRoundTripper writes to the log.
type Option func(*LoggingRoundTripper)

// WithLogFieldMaxLen cuts dumped bodies to n bytes. Zero keeps them whole.
func WithLogFieldMaxLen(n int) Option {
	return func(rt *LoggingRoundTripper) {
		rt.logFieldMaxLen = n
	}
}

func WithSensitiveDataMasker(masker sensitiveDataMasker) Option {
	return func(rt *LoggingRoundTripper) {
		rt.sensitiveDataMasker = masker
	}
}
