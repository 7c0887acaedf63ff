package merge

import (
	"github.com/charmbracelet/log"

	"github.com/minhlq/saoke/pkg/models"
	"github.com/minhlq/saoke/pkg/profile"
)

// ClassifyError reports one document that could not be assigned to a group.
type ClassifyError struct {
	Filename string
	Reason   string
}

// GroupDocuments classifies raw documents by bank profile and account number
// and buckets them into groups. Unclassifiable documents are excluded from
// every group and reported individually; they never abort the run.
func GroupDocuments(set *profile.Set, docs []models.Document, logger *log.Logger) ([]*models.Group, []ClassifyError) {
	var groups []*models.Group
	index := map[string]*models.Group{}
	var errs []ClassifyError

	for _, doc := range docs {
		p := set.Detect(doc.Rows)
		if p == nil {
			logger.Warn("no bank profile matched", "file", doc.Filename)
			errs = append(errs, ClassifyError{Filename: doc.Filename, Reason: "no bank profile matched"})
			continue
		}
		accountNo := p.AccountNumber(doc.Rows)
		logger.Debug("classified document", "file", doc.Filename, "bank", p.ID, "account", accountNo)

		g := &models.Group{BankID: p.ID, AccountNo: accountNo}
		if existing, ok := index[g.Key()]; ok {
			g = existing
		} else {
			index[g.Key()] = g
			groups = append(groups, g)
		}
		g.Documents = append(g.Documents, doc)
	}
	return groups, errs
}
