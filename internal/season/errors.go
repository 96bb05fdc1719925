package season

import "fmt"

// SeasonYearError reports a season year that is not a four digit year.
type SeasonYearError struct {
	Value string
}

func (e *SeasonYearError) Error() string {
	return fmt.Sprintf("Season year doesn't meet the requirements. Expected season year in format `YYYY`, got: `%s`.", e.Value)
}

// HTMLExtensionError reports a document whose extension is not html.
type HTMLExtensionError struct {
	Extension string
}

func (e *HTMLExtensionError) Error() string {
	return fmt.Sprintf("Unsupported file extension. Expected `%s`, got: `%s`.", RawExtension, e.Extension)
}
