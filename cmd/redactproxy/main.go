package main

func main() {
	SetupServeCmd()
	SetupInvokeCmd()
	Execute()
}
