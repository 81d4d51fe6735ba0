package busdata

type Stop struct {
	PrimaryIdentifier string `groups:"basic"`

	Name string `groups:"basic"`

	Location Location `groups:"basic"`
}
