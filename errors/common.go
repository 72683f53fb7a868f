package errors

func InvalidConfigErr(err error) error {
	return E(Invalid, "invalid configuration", err)
}

// UnavailableErr marks a dependency that could not be reached.
func UnavailableErr(resource string, err error) error {
	return E(Unavailable, resource+" unavailable", err)
}
