package api

// API Client-
//
// Files:
//   types.go       - JSON-RPC envelopes, gas levels, price data
//   base.go        - Client struct, GET/POST JSON helpers, JSON-RPC Call
//   gasstation.go  - gas price oracle over HTTP
//   price.go       - fiat price lookup
//
// Usage:
//   client := api.NewClient(30 * time.Second)
//   err := client.Call(ctx, nodeURL, "query", params, &out)      // Near, Avalanche
//   err := client.PostJSON(ctx, url+"/wallet/getaccount", in, &out) // Tron
//   err := client.GetJSON(ctx, restURL+"/cosmos/bank/...", &out)  // Cosmos
//   levels, err := client.GasStation(ctx, stationURL, "ether")
