package clickhouse

// ParseDSN exports parseDSN for testing.
var ParseDSN = parseDSN
