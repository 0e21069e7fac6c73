package nemo

import (
	"fmt"

	"github.com/deepanalytics/reasoning-engines/internal/engineerr"
)

func invalidSyntaxf(format string, args ...any) error {
	return engineerr.InvalidSyntax(fmt.Sprintf(format, args...))
}
