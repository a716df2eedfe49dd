package notion

import (
	"context"
	"fmt"
	"strings"

	"github.com/jomei/notionapi"
)

// Notion caps rich text content at 2000 characters per block.
const maxParagraphLen = 2000

// PageBlocks lists a page's top-level blocks.
func (c *Client) PageBlocks(ctx context.Context, pageID string) ([]notionapi.Block, error) {
	var blocks []notionapi.Block
	pagination := &notionapi.Pagination{PageSize: 100}

	for {
		resp, err := c.api.Block.GetChildren(ctx, notionapi.BlockID(pageID), pagination)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch blocks for page %s: %w", pageID, err)
		}
		blocks = append(blocks, resp.Results...)
		if !resp.HasMore {
			return blocks, nil
		}
		pagination.StartCursor = notionapi.Cursor(resp.NextCursor)
	}
}

// HasHeadingContaining reports whether any heading block's text contains
// the given fragment, case-insensitively.
func HasHeadingContaining(blocks []notionapi.Block, fragment string) bool {
	fragment = strings.ToLower(fragment)
	for _, block := range blocks {
		if strings.Contains(strings.ToLower(headingText(block)), fragment) {
			return true
		}
	}
	return false
}

// WorkshopAssignmentText collects the "Workshop Assignment" section of a
// leader page: the heading plus its following bulleted items, until the
// next heading.
func WorkshopAssignmentText(blocks []notionapi.Block) string {
	var lines []string
	inSection := false
	for _, block := range blocks {
		if heading := headingText(block); heading != "" {
			if inSection {
				break
			}
			if strings.Contains(strings.ToLower(heading), "workshop assignment") {
				inSection = true
			}
			continue
		}
		if !inSection {
			continue
		}
		if item, ok := block.(*notionapi.BulletedListItemBlock); ok {
			if text := richTextPlain(item.BulletedListItem.RichText); text != "" {
				lines = append(lines, text)
			}
		}
	}
	return strings.Join(lines, "\n")
}

// AppendTrainerNotes appends the generated notes section to a leader page:
// a divider, a heading, and the notes split into paragraph chunks under
// the per-block length cap.
func (c *Client) AppendTrainerNotes(ctx context.Context, pageID, notes string) error {
	children := []notionapi.Block{
		&notionapi.DividerBlock{
			BasicBlock: notionapi.BasicBlock{Object: "block", Type: notionapi.BlockTypeDivider},
			Divider:    notionapi.Divider{},
		},
		&notionapi.Heading3Block{
			BasicBlock: notionapi.BasicBlock{Object: "block", Type: notionapi.BlockTypeHeading3},
			Heading3: notionapi.Heading{
				RichText: []notionapi.RichText{textRun("Trainer Notes (AI-Generated)")},
			},
		},
	}
	for _, chunk := range chunkText(notes, maxParagraphLen) {
		children = append(children, &notionapi.ParagraphBlock{
			BasicBlock: notionapi.BasicBlock{Object: "block", Type: notionapi.BlockTypeParagraph},
			Paragraph: notionapi.Paragraph{
				RichText: []notionapi.RichText{textRun(chunk)},
			},
		})
	}

	_, err := c.api.Block.AppendChildren(ctx, notionapi.BlockID(pageID), &notionapi.AppendBlockChildrenRequest{
		Children: children,
	})
	if err != nil {
		return fmt.Errorf("failed to append trainer notes to page %s: %w", pageID, err)
	}
	return nil
}

func textRun(content string) notionapi.RichText {
	return notionapi.RichText{
		Type: notionapi.ObjectTypeText,
		Text: &notionapi.Text{Content: content},
	}
}

func headingText(block notionapi.Block) string {
	switch h := block.(type) {
	case *notionapi.Heading1Block:
		return richTextPlain(h.Heading1.RichText)
	case *notionapi.Heading2Block:
		return richTextPlain(h.Heading2.RichText)
	case *notionapi.Heading3Block:
		return richTextPlain(h.Heading3.RichText)
	}
	return ""
}

// chunkText splits s into pieces of at most size runes, preferring to
// break at paragraph boundaries.
func chunkText(s string, size int) []string {
	var chunks []string
	for _, para := range strings.Split(s, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		runes := []rune(para)
		for len(runes) > size {
			chunks = append(chunks, string(runes[:size]))
			runes = runes[size:]
		}
		if len(runes) > 0 {
			chunks = append(chunks, string(runes))
		}
	}
	return chunks
}
