package document

import (
	"errors"
	"fmt"

	"github.com/dd0wney/cluso-tsg/pkg/storage"
)

// Validate checks cross references: every element of an ordered group
// names a node, edge or group of its section, and both ends of every link
// name an existing section and an element within it. All failures are
// returned joined.
func (d *Document) Validate() error {
	var errs []error

	for _, g := range d.sections {
		for _, grp := range g.Groups() {
			if grp.Kind != storage.Ordered {
				continue
			}
			for _, el := range grp.Elements {
				if !g.Contains(el.ID) {
					errs = append(errs, &ParseError{
						Kind:  grp.Kind.Tag(),
						ID:    grp.ID,
						Cause: fmt.Errorf("%w: %s in graph %s", ErrElementNotFound, el.ID, g.ID),
					})
				}
			}
		}
	}

	for _, l := range d.links {
		for _, ref := range []storage.ElementRef{l.Source, l.Target} {
			g, ok := d.Section(ref.Graph)
			if !ok {
				errs = append(errs, &ParseError{Kind: "L", ID: l.ID,
					Cause: fmt.Errorf("%w: %s", ErrGraphNotFound, ref.Graph)})
				continue
			}
			if !g.Contains(ref.Element) {
				errs = append(errs, &ParseError{Kind: "L", ID: l.ID,
					Cause: fmt.Errorf("%w: %s", ErrElementNotFound, ref)})
			}
		}
	}

	return errors.Join(errs...)
}
