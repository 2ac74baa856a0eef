package hass

import (
	"github.com/frankli0324/go-hass/internal/dialer"
)

type Dialer = dialer.Dialer
type CoreDialer = dialer.CoreDialer
type ResolveConfig = dialer.ResolveConfig
