package projects

import "context"

// OwnerOf implementa shares.ProjectOwnerLookup y activity.ProjectOwnerLookup.
func (s *Service) OwnerOf(ctx context.Context, projectID string) (string, error) {
	if owner, ok := s.owners.Get(projectID); ok {
		return owner, nil
	}
	p, err := s.GetByID(ctx, projectID)
	if err != nil {
		return "", err
	}
	s.owners.Add(p.ID, p.OwnerUserID)
	return p.OwnerUserID, nil
}
