package providers

import "doctemplates/internal/storage"

type Providers struct {
	TemplateProvider *TemplateProvider
	Cache            *MemoryCache
}

// New wires the template provider. Templates are built from fileStorage;
// archives are validated on tmpStorage before they reach it.
func New(fileStorage, tmpStorage storage.Storage, opts ...Option) *Providers {
	cache := NewMemoryCache()
	factory := NewStorageFactory(fileStorage, NewStorageValidator(fileStorage))
	tmpValidator := NewStorageValidator(tmpStorage)

	templateProvider := NewTemplateProvider(fileStorage, tmpStorage, tmpValidator, cache, factory, opts...)

	return &Providers{
		TemplateProvider: templateProvider,
		Cache:            cache,
	}
}
