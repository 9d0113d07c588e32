package engine

import "github.com/sirupsen/logrus"

// Log is the package-wide structured logger every engine derives its
// per-transport entry from. Ambient logging is grounded on
// nabbar-golib/logger's use of logrus as its backing driver
// (SPEC_FULL.md §2); the teacher itself carries no logging dependency.
var Log = logrus.StandardLogger()
