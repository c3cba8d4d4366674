package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/tuitioncenter/core/staff"
)

type staffRepository struct {
	db *DB
}

var _ staff.Repository = (*staffRepository)(nil)

func NewStaffRepository(db *DB) staff.Repository {
	return &staffRepository{db: db}
}

// usernameTaken must be called with a lock held.
func (repo *staffRepository) usernameTaken(username string, excludedID int) bool {
	for _, s := range repo.db.staff {
		if s.Username == username && s.ID != excludedID {
			return true
		}
	}
	return false
}

func (repo *staffRepository) CreateStaff(_ context.Context, s staff.Staff) (staff.Staff, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if repo.usernameTaken(s.Username, 0) {
		return staff.Staff{}, staff.ErrUsernameExists
	}
	s.ID = repo.db.nextID()
	repo.db.staff[s.ID] = s
	return s, nil
}

func (repo *staffRepository) GetStaffByID(_ context.Context, id int) (staff.Staff, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if s, ok := repo.db.staff[id]; ok {
		return s, nil
	}
	return staff.Staff{}, staff.ErrNotFound
}

func (repo *staffRepository) GetStaffByUsername(_ context.Context, username string) (staff.Staff, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, s := range repo.db.staff {
		if s.Username == username {
			return s, nil
		}
	}
	return staff.Staff{}, staff.ErrNotFound
}

func (repo *staffRepository) QueryStaffByRole(_ context.Context, role string) ([]staff.Staff, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	members := make([]staff.Staff, 0)
	for _, s := range repo.db.staff {
		if s.Role == role {
			members = append(members, s)
		}
	}
	sort.Slice(members, func(i, j int) bool {
		if members[i].FullName == members[j].FullName {
			return members[i].ID < members[j].ID
		}
		return members[i].FullName < members[j].FullName
	})
	return members, nil
}

func (repo *staffRepository) UpdateStaff(_ context.Context, s staff.Staff) (staff.Staff, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.staff[s.ID]
	if !ok {
		return staff.Staff{}, staff.ErrNotFound
	}
	if repo.usernameTaken(s.Username, s.ID) {
		return staff.Staff{}, staff.ErrUsernameExists
	}
	s.CreatedAt = orig.CreatedAt
	repo.db.staff[s.ID] = s
	return s, nil
}
