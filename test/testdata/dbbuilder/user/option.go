package userbuilder

type Option func(*FactoryParams)

type FactoryParams struct {
	Name         string
	Email        string
	PasswordHash string
}

func WithName(name string) Option {
	return func(p *FactoryParams) { p.Name = name }
}

func WithEmail(email string) Option {
	return func(p *FactoryParams) { p.Email = email }
}

func WithPasswordHash(hash string) Option {
	return func(p *FactoryParams) { p.PasswordHash = hash }
}
