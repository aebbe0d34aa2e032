package qext

/*
Minimal capability of any query that can be rendered and embedded into another
query as a common table expression. `(*Select).With` and `(*Select).AddWith`
depend only on this interface, rather than the concrete `*Select`, allowing
external code to implement its own variants, wrap `Select`, etc.

Implementations must return a parameter map that the caller may read but not
retain; the embedding builder copies the entries it needs.
*/
type Query interface {
	Render() (string, error)
	Parameters() Parameters
}

/*
Literal SQL query. Useful for embedding hand-written SQL as a common table
expression while still carrying its named parameters:

	query.AddWith(qext.Raw{
		Text:   `SELECT id FROM archive WHERE year = :year`,
		Params: qext.Parameters{`year`: qext.NewParam(`year`, qext.Int(2020))},
	}, `archived`)
*/
type Raw struct {
	Text   string
	Params Parameters
}

// Implement `Query`. Empty text is an error.
func (self Raw) Render() (string, error) {
	if isBlank(self.Text) {
		return ``, ErrInvalidInput.while(`rendering raw query`).because(errf(`empty query text`))
	}
	return self.Text, nil
}

// Implement `Query`.
func (self Raw) Parameters() Parameters { return self.Params.clone() }

/*
Shortcut for rendering a query and collecting its parameters in one call. Go
database layers tend to require text and arguments as a pair.
*/
func Reify(query Query) (string, Parameters, error) {
	if query == nil {
		return ``, nil, ErrInvalidInput.while(`reifying query`).because(errf(`nil query`))
	}
	text, err := query.Render()
	if err != nil {
		return ``, nil, err
	}
	return text, query.Parameters(), nil
}
