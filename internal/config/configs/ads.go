package configs

// Ads configures ad serving. Placements are the slot names reported as
// their own metric label; any other slot is counted as "other".
type Ads struct {
	Placements []string `env:"PLACEMENTS" envSeparator:"," envDefault:"home,search_top,search_inline,category,item_page"`
}
