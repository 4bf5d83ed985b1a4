// Package client implements the operator commands of loopguard-ctl: reading
// the settings of a running guard, changing its threshold and re-arming its
// one-shot alerting.
package client
