package command

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/mailsphere/internal/game"
	"github.com/pixil98/mailsphere/internal/storage"
)

type StorageConfig struct {
	// Root is the directory asset paths are relative to. An asset without a
	// path is read from the directory named after it below Root.
	Root string `json:"root"`

	Quests    AssetConfig[*game.QuestSpec]    `json:"quests"`
	Mail      AssetConfig[*game.MailSpec]     `json:"mail"`
	Dialogues AssetConfig[*game.DialogueTree] `json:"dialogues"`
	NPCs      AssetConfig[*game.NPCSpec]      `json:"npcs"`
	Mailboxes AssetConfig[*game.MailboxSpec]  `json:"mailboxes"`
}

func (c *StorageConfig) BuildDictionary() (*game.Dictionary, error) {
	quests, err := c.Quests.BuildFileStore(c.Root, "quests")
	if err != nil {
		return nil, fmt.Errorf("creating quest store: %w", err)
	}
	mail, err := c.Mail.BuildFileStore(c.Root, "mail")
	if err != nil {
		return nil, fmt.Errorf("creating mail store: %w", err)
	}
	dialogues, err := c.Dialogues.BuildFileStore(c.Root, "dialogues")
	if err != nil {
		return nil, fmt.Errorf("creating dialogue store: %w", err)
	}
	npcs, err := c.NPCs.BuildFileStore(c.Root, "npcs")
	if err != nil {
		return nil, fmt.Errorf("creating npc store: %w", err)
	}
	mailboxes, err := c.Mailboxes.BuildFileStore(c.Root, "mailboxes")
	if err != nil {
		return nil, fmt.Errorf("creating mailbox store: %w", err)
	}

	dict := &game.Dictionary{
		Quests:    quests,
		Mail:      mail,
		Dialogues: dialogues,
		NPCs:      npcs,
		Mailboxes: mailboxes,
	}

	if err := dict.Resolve(); err != nil {
		return nil, fmt.Errorf("resolving references: %w", err)
	}

	return dict, nil
}

func (c *StorageConfig) validate() error {
	el := errors.NewErrorList()
	el.Add(c.Quests.Validate(c.Root, "quests"))
	el.Add(c.Mail.Validate(c.Root, "mail"))
	el.Add(c.Dialogues.Validate(c.Root, "dialogues"))
	el.Add(c.NPCs.Validate(c.Root, "npcs"))
	el.Add(c.Mailboxes.Validate(c.Root, "mailboxes"))
	return el.Err()
}

type AssetConfig[T storage.ValidatingSpec] struct {
	Path string `json:"path"`
}

// resolve returns the directory the assets are read from.
func (c *AssetConfig[T]) resolve(root, name string) string {
	switch {
	case c.Path == "":
		if root == "" {
			return ""
		}
		return filepath.Join(root, name)
	case filepath.IsAbs(c.Path) || root == "":
		return c.Path
	default:
		return filepath.Join(root, c.Path)
	}
}

func (c *AssetConfig[T]) Validate(root, name string) error {
	path := c.resolve(root, name)
	if path == "" {
		return fmt.Errorf("%s: path is required", name)
	}
	_, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%s: invalid path %q: %w", name, path, err)
	}

	return nil
}

func (c *AssetConfig[T]) BuildFileStore(root, name string) (*storage.FileStore[T], error) {
	return storage.NewFileStore[T](c.resolve(root, name))
}
