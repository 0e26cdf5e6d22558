package domain

// CollectionQueries: Synchronous reads over the store and the derived state.
// All methods return instantly. NEVER block on network.
type CollectionQueries interface {
	ListNames() []string
	List(name string) []MovieStub
	MovieLists(id int) []string
}
