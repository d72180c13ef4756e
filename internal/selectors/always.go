package selectors

import "github.com/fnug-dev/fnug/internal/config"

// AlwaysSelector partitions on auto.always == true.
type AlwaysSelector struct{}

// Select implements Selector.
func (AlwaysSelector) Select(commands []*config.Command) (selected, remaining []*config.Command, err error) {
	for _, c := range commands {
		if c.Auto.IsAlways() {
			selected = append(selected, c)
		} else {
			remaining = append(remaining, c)
		}
	}
	return selected, remaining, nil
}
