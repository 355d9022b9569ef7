package memory

import "fmt"

func errDuplicate(id string) error {
	return fmt.Errorf("memory: campaign %s already exists", id)
}

func errOverspend(id string) error {
	return fmt.Errorf("memory: charge would overspend campaign %s", id)
}
