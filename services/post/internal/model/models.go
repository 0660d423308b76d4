package model

// All lists every model in dependency order, for AutoMigrate in tests and tooling.
func All() []interface{} {
	return []interface{}{
		&UserModel{},
		&PostModel{},
		&PostMediaModel{},
		&PostLikeModel{},
		&CommentModel{},
	}
}
