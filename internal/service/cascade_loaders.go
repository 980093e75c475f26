package service

import (
	"context"
	"net/http"
	"net/url"

	"github.com/shehrozeikram/SGCEducation-sub002/internal/cascade"
	"github.com/shehrozeikram/SGCEducation-sub002/internal/client"
	"github.com/shehrozeikram/SGCEducation-sub002/internal/models"
	"github.com/shehrozeikram/SGCEducation-sub002/internal/query"
	"github.com/shehrozeikram/SGCEducation-sub002/internal/resource"
)

type namedItem struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

// CascadeLoaders builds the option loaders of the dependent selectors used
// by the result and promotion forms. Students are users with the student
// role placed in the chosen class and, when set, section.
func CascadeLoaders(c requester) cascade.Loaders {
	load := func(path string, params func(cascade.Selection) url.Values) cascade.Loader {
		return func(ctx context.Context, sel cascade.Selection) ([]cascade.Option, error) {
			resp, err := c.Do(ctx, client.Request{Method: http.MethodGet, Path: path, Query: params(sel)})
			if err != nil {
				return nil, err
			}
			var items []namedItem
			if err := resp.Decode(&items); err != nil {
				return nil, err
			}
			options := make([]cascade.Option, 0, len(items))
			for _, it := range items {
				label := it.Name
				if label == "" {
					label = it.Code
				}
				options = append(options, cascade.Option{ID: it.ID, Label: label})
			}
			return options, nil
		}
	}
	byInstitution := func(sel cascade.Selection) url.Values {
		return url.Values{query.KeyInstitution: {sel.Institution}}
	}

	return cascade.Loaders{
		cascade.LevelInstitution: load(resource.Institutions.Path, func(cascade.Selection) url.Values { return nil }),
		cascade.LevelDepartment:  load(resource.Departments.Path, byInstitution),
		cascade.LevelGroup:       load(resource.Groups.Path, byInstitution),
		cascade.LevelClass:       load(resource.Classes.Path, byInstitution),
		cascade.LevelSection: load(resource.Sections.Path, func(sel cascade.Selection) url.Values {
			return url.Values{query.KeyInstitution: {sel.Institution}, query.KeyClass: {sel.Class}}
		}),
		cascade.LevelStudent: load(resource.Users.Path, func(sel cascade.Selection) url.Values {
			params := url.Values{
				query.KeyRole:        {string(models.RoleStudent)},
				query.KeyInstitution: {sel.Institution},
				query.KeyClass:       {sel.Class},
			}
			if sel.Section != "" {
				params.Set(query.KeySection, sel.Section)
			}
			return params
		}),
	}
}
