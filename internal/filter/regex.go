package filter

import (
	"fmt"
	"sync"
	"time"

	"github.com/dlclark/regexp2"
)

const matchTimeout = 100 * time.Millisecond

type regexCompiler interface {
	Compile(pattern string) (*regexp2.Regexp, error)
}

type cachedRegexCompiler struct {
	mu       sync.RWMutex
	patterns map[string]*regexp2.Regexp
}

func newCachedRegexCompiler() *cachedRegexCompiler {
	return &cachedRegexCompiler{
		patterns: make(map[string]*regexp2.Regexp),
	}
}

var defaultRegexCompiler = newCachedRegexCompiler()

func (c *cachedRegexCompiler) Compile(pattern string) (*regexp2.Regexp, error) {
	c.mu.RLock()
	if compiled, ok := c.patterns[pattern]; ok {
		c.mu.RUnlock()
		return compiled, nil
	}
	c.mu.RUnlock()

	compiled, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid regex %q: %v", ErrInvalidCondition, pattern, err)
	}
	compiled.MatchTimeout = matchTimeout

	c.mu.Lock()
	c.patterns[pattern] = compiled
	c.mu.Unlock()

	return compiled, nil
}

// matcher tests the text of the row value; a timeout counts as no match.
func matcher(re *regexp2.Regexp) comparison {
	return func(actual, _ operand) bool {
		if !actual.defined {
			return false
		}
		ok, err := re.MatchString(actual.text())
		return err == nil && ok
	}
}
