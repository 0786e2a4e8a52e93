package screenwiring

import (
	"github.com/goliatone/go-formscreen/components/collections"
	"github.com/goliatone/go-formscreen/pkg/orchestrator"
)

// CollectionDataSource returns an orchestrator DataSourceOverride that points
// a table component at a collection served by the collections component.
//
// The generated override:
// - targets <baseURL><RoutePath>/<collection> (default: <baseURL>/api/collections/<collection>)
// - switches the table to server-side paging, sorting and search
// - keeps the stored page size
func CollectionDataSource(screenID, componentID, collection, baseURL string, fns ...collections.OptionFn) orchestrator.DataSourceOverride {
	serverSide := true
	return orchestrator.DataSourceOverride{
		ScreenID:    screenID,
		ComponentID: componentID,
		URL:         collections.MountPath(baseURL, collection, fns...),
		ServerSide:  &serverSide,
	}
}
