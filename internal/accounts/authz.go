package accounts

// AuthorizeSelf is the whole ownership rule for account resources: the
// actor may touch the target iff the target is the actor. Composed
// explicitly at the top of each sensitive operation; denial carries no
// hint about whether the target exists.
func AuthorizeSelf(actorID, targetID string) bool {
	return actorID != "" && actorID == targetID
}
