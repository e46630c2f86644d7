package cloudsync

import (
	"context"

	"github.com/jomei/notionapi"
	"github.com/pkg/errors"
)

// Cataloger records retitled files somewhere users can browse them.
type Cataloger interface {
	Record(ctx context.Context, c *CloudFile) error
}

type NotionHandler struct {
	databaseID notionapi.DatabaseID
	nc         *notionapi.Client
}

func NewNotionHandler(token string, databaseID string) *NotionHandler {
	return &NotionHandler{
		nc:         notionapi.NewClient(notionapi.Token(token)),
		databaseID: notionapi.DatabaseID(databaseID),
	}
}

func (nh *NotionHandler) getProperties(c *CloudFile) notionapi.Properties {
	props := notionapi.Properties{
		"Name": notionapi.PageTitleProperty{
			Title: notionapi.Paragraph{
				notionapi.RichText{
					Text: notionapi.Text{
						Content: c.Title,
					},
				},
			},
		},
		"Tags": notionapi.MultiSelectOptionsProperty{
			Type: "multi_select",
			MultiSelect: func() []notionapi.Option {
				var res []notionapi.Option
				for _, tag := range c.Tags {
					res = append(res, notionapi.Option{Name: tag})
				}
				return res
			}(),
		},
	}
	// Notion rejects empty URLs
	if c.URL != "" {
		props["URL"] = notionapi.URLProperty{
			Type: "url",
			URL:  c.URL,
		}
	}
	return props
}

// CreatePage adds c to the database and returns the new page ID.
func (nh *NotionHandler) CreatePage(ctx context.Context, c *CloudFile) (string, error) {
	req := &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			DatabaseID: nh.databaseID,
		},
		Properties: nh.getProperties(c),
	}
	page, err := nh.nc.Page.Create(ctx, req)
	if err != nil {
		return "", errors.Wrap(err, "notion handler CreatePage failed")
	}
	return page.ID.String(), nil
}

func (nh *NotionHandler) Record(ctx context.Context, c *CloudFile) error {
	_, err := nh.CreatePage(ctx, c)
	return err
}
