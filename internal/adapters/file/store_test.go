package file_test

import (
	"testing"

	"github.com/halden-bio/catalyst/internal/adapters/file"
	"github.com/halden-bio/catalyst/pkg/ports"
)

func TestFileStore_Contract(t *testing.T) {
	store := file.New(t.TempDir())
	ports.RunStateStoreContract(t, store)
}
