package connector

import (
	"database/sql/driver"
	"net/url"
	"strconv"
	"strings"
)

// Address is a backend connection descriptor built from a validated configuration.
type Address struct {
	Scheme   string
	Username string
	Password string
	Host     string
	Port     int
	Database string
	// Path is used instead of Host for file based backends.
	Path  string
	Query url.Values

	// Driver and DSN are what database/sql needs to open the address.
	Driver string
	DSN    string

	// Connector, when set, is opened with sql.OpenDB instead of Driver and DSN.
	Connector driver.Connector
}

// URI renders the canonical connection URI with percent-encoded credentials.
func (a *Address) URI() string {
	return a.render(a.Password)
}

// Redacted renders the URI with the password masked.
func (a *Address) Redacted() string {
	if a.Password == "" {
		return a.render("")
	}
	return a.render("xxxxx")
}

// String implements fmt.Stringer without exposing secrets.
func (a *Address) String() string {
	return a.Redacted()
}

func (a *Address) render(password string) string {
	u := url.URL{Scheme: a.Scheme}
	if a.Path != "" {
		u.Path = a.Path
		if !strings.HasPrefix(u.Path, "/") {
			u.Path = "/" + u.Path
		}
	} else {
		if a.Username != "" {
			if password != "" {
				u.User = url.UserPassword(a.Username, password)
			} else {
				u.User = url.User(a.Username)
			}
		}
		u.Host = a.Host
		if a.Port > 0 {
			u.Host = a.Host + ":" + strconv.Itoa(a.Port)
		}
		if a.Database != "" {
			u.Path = "/" + a.Database
		}
	}
	if len(a.Query) > 0 {
		u.RawQuery = a.Query.Encode()
	}
	return u.String()
}
