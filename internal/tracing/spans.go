package tracing

// Span attribute keys for registry tracing.
const (
	AttrCaller        = "caller.address"
	AttrMarket        = "market.address"
	AttrCategory      = "resource.category"
	AttrResource      = "resource.address"
	AttrResourceKind  = "resource.kind"
	AttrFactory       = "factory.address"
	AttrFactoryOld    = "factory.address.old"
	AttrModuleFamily  = "module.family"
	AttrModuleVersion = "module.version"
	AttrPrincipal     = "principal.address"
	AttrErrorMessage  = "error.message"
)

// Span names for registry operations.
const (
	SpanInitialize       = "registry.initialize"
	SpanConfigureFactory = "registry.configure_factory"
	SpanCreateCreditLine = "registry.create.credit_line"
	SpanCreatePool       = "registry.create.liquidity_pool"
	SpanUpgrade          = "registry.upgrade"
	SpanPause            = "registry.pause"
	SpanUnpause          = "registry.unpause"
	SpanTransferOwner    = "registry.owner.transfer"
	SpanGrantRole        = "registry.role.grant"
	SpanRevokeRole       = "registry.role.revoke"
)
